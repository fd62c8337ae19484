package cardid

import "errors"

// Errors that SmartCardContext implementations report so the channel can
// classify failures without knowing the PC/SC binding in use.
var (
	// ErrNoCardPresent is returned by Connect when the reader is empty.
	ErrNoCardPresent = errors.New("no smart card present")
	// ErrReaderBusy is returned by Connect when another process holds the card exclusively.
	ErrReaderBusy = errors.New("reader in use by another application")
)

// SmartCardContext represents a PC/SC context for listing readers.
// ListReaders returns an empty list, not an error, when no reader is attached.
type SmartCardContext interface {
	ListReaders() ([]string, error)
	Connect(reader string) (SmartCard, error)
	Release() error
}

// SmartCard represents a connected smart card for transmitting commands.
type SmartCard interface {
	Transmit(cmd []byte) ([]byte, error)
	Disconnect() error
}

// ContextFactory creates SmartCardContext instances.
// This allows for dependency injection and mocking in tests.
type ContextFactory interface {
	EstablishContext() (SmartCardContext, error)
}
