package dashboard

import "errors"

var errNoUpdates = errors.New("live updates are not enabled")
