package transfer

// GroupKind distinguishes the flavors of Telegram chats a group link can
// resolve to. Invites only work against supergroups and channels; legacy
// groups are resolved but rejected during access validation.
type GroupKind string

const (
	GroupKindGroup      GroupKind = "group"
	GroupKindSupergroup GroupKind = "supergroup"
	GroupKindChannel    GroupKind = "channel"
)

// GroupHandle is an opaque reference to a resolved group. It is scoped to a
// single transfer run and never persisted.
type GroupHandle struct {
	ID          int64
	AccessHash  int64
	Title       string
	Username    string
	MemberCount int
	Kind        GroupKind
	Private     bool
}

// MemberStatus is the membership state as reported by the source group.
type MemberStatus string

const (
	MemberStatusMember MemberStatus = "member"
	MemberStatusAdmin  MemberStatus = "admin"
	MemberStatusOwner  MemberStatus = "owner"
	MemberStatusBanned MemberStatus = "banned"
	MemberStatusLeft   MemberStatus = "left"
)

// Member is one participant of a source group. Members exist transiently
// during a run; only aggregate counts survive it.
type Member struct {
	ID         int64
	AccessHash int64
	Username   string
	FirstName  string
	LastName   string
	Phone      string
	Bot        bool
	Premium    bool
	Status     MemberStatus
}

// AccessIntent names what a caller wants to do with a group when
// pre-flighting it before a transfer.
type AccessIntent string

const (
	AccessIntentRead   AccessIntent = "read"
	AccessIntentInvite AccessIntent = "invite"
)

// AccessCheck is the result of pre-flighting a group. It is always populated,
// never an error: a group that cannot be used reports Allowed=false with a
// human-readable reason.
type AccessCheck struct {
	Allowed     bool
	MemberCount int
	Reason      string
}
