package hostindex

// Request flags for the host index wire protocol.
const (
	RequestFullPath     uint32 = 0x00000004
	RequestSize         uint32 = 0x00000010
	RequestDateModified uint32 = 0x00000040
)

// Sort orders.
const (
	SortNameAscending          uint32 = 1
	SortDateModifiedDescending uint32 = 12
)

// Error codes returned by the host index.
const (
	CodeOK uint32 = iota
	CodeMemory
	CodeIPC
	CodeRegisterClass
	CodeCreateWindow
	CodeCreateThread
	CodeInvalidIndex
	CodeInvalidCall
)

// codeMessage maps a numeric code to its textual taxonomy.
func codeMessage(code uint32) string {
	switch code {
	case CodeOK:
		return "ok"
	case CodeMemory:
		return "memory allocation error"
	case CodeIPC:
		return "IPC unavailable - is the host index running?"
	case CodeRegisterClass:
		return "failed to register window class"
	case CodeCreateWindow:
		return "failed to create window"
	case CodeCreateThread:
		return "failed to create thread"
	case CodeInvalidIndex:
		return "invalid index"
	case CodeInvalidCall:
		return "invalid call"
	default:
		return "unknown error"
	}
}

// pathBufLen is the minimum UTF-16 buffer for one result path.
const pathBufLen = 1024

// Conn is the opaque handle to the host's file-name index. One Conn is
// obtained per process; every call on it is blocking and the protocol is
// stateful, so the adapter serializes all access onto a single worker
// goroutine. Search strings and result paths travel as UTF-16 code units.
type Conn interface {
	// Reset clears state from the previous query.
	Reset()

	SetMatchCase(on bool)
	SetMatchWholeWord(on bool)
	SetMatchPath(on bool)
	SetSort(order uint32)
	SetRequestFlags(flags uint32)
	SetMax(n uint32)

	// SetSearch installs the NUL-terminated UTF-16 search string.
	SetSearch(query []uint16)

	// Query executes the installed search, blocking until results are
	// ready. A false return means failure; LastError has the code.
	Query(wait bool) bool

	LastError() uint32
	NumResults() uint32

	// ResultFullPath copies result i's path into buf and returns the
	// number of code units written (0 on failure). buf must hold at least
	// pathBufLen units.
	ResultFullPath(i uint32, buf []uint16) uint32

	ResultSize(i uint32) int64
	ResultModifiedUnix(i uint32) int64

	// Close releases the handle. The adapter owns the Conn exclusively
	// and closes it exactly once.
	Close()
}
