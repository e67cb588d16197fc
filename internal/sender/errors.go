package sender

import "errors"

// ErrFileChanged indicates a file's on-disk size no longer matches what was
// recorded when it was scanned — a hard error, since the sender already
// promised the receiver an exact byte count before streaming began.
var ErrFileChanged = errors.New("sender: file changed since scan")
