package docstore

import "time"

// timeNow is swapped in tests to pin record ids and date stamps.
var timeNow = time.Now
