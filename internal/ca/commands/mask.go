package commands

// EventMask selects which kinds of updates a subscription (EventAddRequest)
// should push, matching the CA DBE_* bits.
type EventMask uint16

const (
	EventMaskValue EventMask = 1 << iota
	EventMaskLog
	EventMaskAlarm
	EventMaskProperty
)

// MinimumProtocolVersion is the lowest CA protocol version this engine
// will negotiate. Versions below this predate features the codec assumes
// (notably the extended header).
const MinimumProtocolVersion uint16 = 11

// MaxPriority is the highest legal virtual-circuit priority (spec §4.2).
const MaxPriority uint16 = 99

// MaxChannelNameLength bounds CreateChanRequest's channel_name field.
const MaxChannelNameLength = 500

// MaxIdentityLength bounds ClientNameRequest/HostNameRequest strings.
const MaxIdentityLength = 512
