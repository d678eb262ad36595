// Package lifecycle holds process-wide start/stop constants.
package lifecycle

import "time"

// DefaultTimeout bounds every lifecycle hook (DB ping, migrations, HTTP shutdown).
const DefaultTimeout = 10 * time.Second
