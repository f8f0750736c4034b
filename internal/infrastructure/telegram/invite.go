package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

// defaultFloodWait is assumed when the server signals flood control without a
// parsable duration.
const defaultFloodWait = 60 * time.Second

// Invite adds one member to the target group. It is single-shot: throttling
// is reported as an outcome and the retry policy lives with the caller.
func (c *Client) Invite(ctx context.Context, target domain.GroupHandle, member domain.Member) domain.InviteResult {
	_, err := c.api.ChannelsInviteToChannel(ctx, &tg.ChannelsInviteToChannelRequest{
		Channel: inputChannel(target),
		Users: []tg.InputUserClass{
			&tg.InputUser{UserID: member.ID, AccessHash: member.AccessHash},
		},
	})
	if err == nil {
		return domain.Invited()
	}
	return classifyInviteError(err)
}

func classifyInviteError(err error) domain.InviteResult {
	if wait, ok := floodWait(err); ok {
		return domain.Throttled(wait)
	}

	switch {
	case tgerr.Is(err, "USER_ALREADY_PARTICIPANT"):
		return domain.Skipped("already a member")
	case tgerr.Is(err, "USER_BOT"):
		return domain.Skipped("bot account")
	case tgerr.Is(err, "USER_PRIVACY_RESTRICTED"):
		return domain.FailedInvite("privacy settings prevent invites")
	case tgerr.Is(err, "USER_NOT_MUTUAL_CONTACT"):
		return domain.FailedInvite("user is not a mutual contact")
	case tgerr.Is(err, "USER_CHANNELS_TOO_MUCH"):
		return domain.FailedInvite("user is in too many channels")
	case tgerr.Is(err, "USER_KICKED"), tgerr.Is(err, "USER_BANNED_IN_CHANNEL"):
		return domain.FailedInvite("user is banned from the group")
	case tgerr.Is(err, "PEER_FLOOD"):
		// PEER_FLOOD carries no duration and clears on its own schedule.
		return domain.Throttled(defaultFloodWait)
	}
	return domain.FailedInvite(err.Error())
}

// floodWait extracts the mandated wait from a flood-control error. It prefers
// the typed RPC error and falls back to parsing FLOOD_WAIT_<seconds> out of
// the message, defaulting to 60s when the seconds are absent or malformed.
func floodWait(err error) (time.Duration, bool) {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return wait, true
	}

	msg := err.Error()
	idx := strings.Index(msg, "FLOOD_WAIT")
	if idx < 0 {
		return 0, false
	}

	rest := strings.TrimPrefix(msg[idx:], "FLOOD_WAIT")
	rest = strings.TrimPrefix(rest, "_")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	seconds, convErr := strconv.Atoi(rest[:end])
	if convErr != nil || seconds <= 0 {
		return defaultFloodWait, true
	}
	return time.Duration(seconds) * time.Second, true
}
