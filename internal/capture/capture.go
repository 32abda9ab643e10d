// Package capture models an exclusive audio+video recording device.
package capture

import "context"

// Media is a finished capture artifact. It is exclusively owned by whoever
// holds it and is never shared between sessions.
type Media struct {
	Bytes    []byte
	MIMEType string
}

// Empty reports whether the media holds no recorded bytes.
func (m Media) Empty() bool {
	return len(m.Bytes) == 0
}

// Device hands out exclusive capture handles. Acquire fails when the device is
// missing, busy or permission is denied.
type Device interface {
	Acquire(ctx context.Context) (Handle, error)
}

// Handle is a live recording in progress. Stop finalizes the recording into
// Media. Release frees the device and must always be called, even when Stop
// failed, so that the camera and microphone are not leaked.
type Handle interface {
	Stop(ctx context.Context) (Media, error)
	Release() error
}
