package protocol

// Version is the protocol version both sides announce
const Version = "1"

// Verbs received from the controller
const (
	CmdVersion = "VERSION"
	CmdStart   = "START"
	CmdLink    = "LINK"
	CmdDir     = "DIR"
	CmdWait    = "WAIT"
	CmdChanges = "CHANGES"
	CmdReset   = "RESET"
	CmdDebug   = "DEBUG"
	CmdDone    = "DONE"
)

// Verbs sent to the controller. CHANGES, DONE and VERSION are shared with
// the incoming set.
const (
	RespOK        = "OK"
	RespRecursive = "RECURSIVE"
	RespError     = "ERROR"
)
