package outcome

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	Downloaded Kind = iota
	SkippedExisting
	SkippedNoAsset
	FailedHTTP
	FailedTransport
)

var kindNames = map[Kind]string{
	Downloaded:      "downloaded",
	SkippedExisting: "skipped_existing",
	SkippedNoAsset:  "skipped_no_asset",
	FailedHTTP:      "failed_http",
	FailedTransport: "failed_transport",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{Downloaded, SkippedExisting, SkippedNoAsset, FailedHTTP, FailedTransport}
}

var (
	ErrNoAssetAvailable = errors.New("no asset available")
	ErrAlreadyPersisted = errors.New("asset already persisted")
)

type RemoteRejectedError struct {
	Status int
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("remote rejected: HTTP %d", e.Status)
}

type TransportFaultError struct {
	Cause error
}

func (e *TransportFaultError) Error() string {
	return "transport fault: " + e.Cause.Error()
}

func (e *TransportFaultError) Unwrap() error {
	return e.Cause
}

var errUnknownFault = errors.New("unknown transport fault")

// Outcome is the result of fetching and persisting the asset of one record.
// It is immutable; WithID returns a modified copy.
type Outcome struct {
	id    string
	url   string
	path  string
	kind  Kind
	bytes int64

	status int
	cause  error
}

func NewDownloaded(url, path string, bytes int64) Outcome {
	return Outcome{url: url, path: path, kind: Downloaded, bytes: bytes}
}

func NewSkippedExisting(url, path string) Outcome {
	return Outcome{url: url, path: path, kind: SkippedExisting}
}

func NewSkippedNoAsset(id string) Outcome {
	return Outcome{id: id, kind: SkippedNoAsset}
}

func NewFailedHTTP(url, path string, status int) Outcome {
	return Outcome{url: url, path: path, kind: FailedHTTP, status: status}
}

func NewFailedTransport(url, path string, cause error) Outcome {
	return Outcome{url: url, path: path, kind: FailedTransport, cause: cause}
}

func (o Outcome) WithID(id string) Outcome {
	o.id = id
	return o
}

// ID is the identifier of the record the outcome belongs to.
func (o Outcome) ID() string { return o.id }

// URL is the fetched URL, empty for SkippedNoAsset.
func (o Outcome) URL() string { return o.url }

// Path is the local destination, empty for SkippedNoAsset.
func (o Outcome) Path() string { return o.path }

func (o Outcome) Kind() Kind { return o.kind }

// Bytes is the size of a Downloaded asset.
func (o Outcome) Bytes() int64 { return o.bytes }

// Status is the HTTP status of a FailedHTTP outcome and 0 otherwise.
func (o Outcome) Status() int {
	return o.status
}

// Cause is the underlying error of a FailedTransport outcome, nil for the
// other kinds.
func (o Outcome) Cause() error {
	if o.kind == FailedTransport && o.cause == nil {
		return errUnknownFault
	}
	return o.cause
}

func (o Outcome) Failed() bool {
	return o.kind == FailedHTTP || o.kind == FailedTransport
}

// Err maps the outcome onto the error taxonomy. Downloaded yields nil.
func (o Outcome) Err() error {
	switch o.kind {
	case SkippedExisting:
		return ErrAlreadyPersisted
	case SkippedNoAsset:
		return ErrNoAssetAvailable
	case FailedHTTP:
		return &RemoteRejectedError{Status: o.status}
	case FailedTransport:
		return &TransportFaultError{Cause: o.Cause()}
	}

	return nil
}

func (o Outcome) String() string {
	switch o.kind {
	case Downloaded:
		return fmt.Sprintf("Downloaded %s", o.id)
	case SkippedExisting:
		return fmt.Sprintf("Skipped %s (already exists)", o.id)
	case SkippedNoAsset:
		return fmt.Sprintf("Skipped %s (no image available)", o.id)
	case FailedHTTP:
		return fmt.Sprintf("Failed to download %s: HTTP %d", o.id, o.status)
	case FailedTransport:
		return fmt.Sprintf("Error downloading %s: %s", o.id, o.Cause().Error())
	}

	return o.kind.String()
}
