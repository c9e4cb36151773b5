package constants

// Contact origin bitmask values, lowest to highest priority. A contact's
// stored origin is the max ever observed across all upserts.
const (
	OriginUnknown uint32 = 1 << iota
	OriginIncomingUnknownFrom
	OriginIncomingCc
	OriginIncomingTo
	OriginIncomingReplyTo
	OriginOutgoingBcc
	OriginOutgoingCc
	OriginOutgoingTo
	OriginAddressBook
	OriginManuallyCreated
)

// Special contact ids, reserved below ContactIDLastSpecial.
const (
	ContactIDSelf         uint32 = 1
	ContactIDLastSpecial  uint32 = 9
)

// Chat kinds.
const (
	ChatKindSingle = iota
	ChatKindGroup
)

// Special chat ids, reserved below ChatIDLastSpecial.
const (
	ChatIDDeaddrop     uint32 = 1
	ChatIDToDeaddrop   uint32 = 6
	ChatIDTrash        uint32 = 3
	ChatIDLastSpecial  uint32 = 9
)

// Message states.
const (
	MsgInFresh = iota
	MsgInNoticed
	MsgInSeen
	MsgOutPending
	MsgOutDelivered
	MsgOutRead
	MsgOutError
)

// MsgIDDaymarker is a synthetic message id used only for UI day-separator
// rendering; never assigned to a stored message.
const MsgIDDaymarker uint32 = 9

// Event ids fired by the event dispatcher.
const (
	EventMsgsChanged = iota + 2000
	EventIncomingMsg
	EventMsgRead
	EventChatModified
	EventWakeLock
)

// Config keys (subset) read/written through the store's get_config/set_config.
const (
	ConfigConfigured       = "configured"
	ConfigConfiguredAddr   = "configured_addr"
	ConfigDisplayname      = "displayname"
	ConfigE2eeEnabled      = "e2ee_enabled"
	ConfigMdnsEnabled      = "mdns_enabled"
	ConfigShowDeaddrop     = "show_deaddrop"
	ConfigDbVersion        = "dbversion"
)

// GroupValidIDLen is the required length of a synthetic group id.
const GroupValidIDLen = 8
