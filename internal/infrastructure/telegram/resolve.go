package telegram

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

// tgAPI is the slice of the raw MTProto surface the transfer flow touches.
type tgAPI interface {
	ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	ChannelsGetFullChannel(ctx context.Context, channel tg.InputChannelClass) (*tg.MessagesChatFull, error)
	ChannelsGetParticipants(ctx context.Context, request *tg.ChannelsGetParticipantsRequest) (tg.ChannelsChannelParticipantsClass, error)
	ChannelsInviteToChannel(ctx context.Context, request *tg.ChannelsInviteToChannelRequest) (*tg.MessagesInvitedUsers, error)
}

// Resolve turns a t.me link into a group handle. The handle's access hash is
// session-scoped and must not outlive this connection.
func (c *Client) Resolve(ctx context.Context, link string) (domain.GroupHandle, error) {
	name, err := domain.ParseGroupLink(link)
	if err != nil {
		return domain.GroupHandle{}, err
	}

	peer, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: name})
	if err != nil {
		switch {
		case tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID"):
			return domain.GroupHandle{}, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, name)
		case tgerr.Is(err, "CHANNEL_PRIVATE", "CHANNEL_INVALID"):
			return domain.GroupHandle{}, fmt.Errorf("%w: %s", domain.ErrAccessDenied, name)
		}
		return domain.GroupHandle{}, errors.Wrap(err, "resolve username")
	}

	channel := findChannel(peer.Chats)
	if channel == nil {
		return domain.GroupHandle{}, fmt.Errorf("%w: %s is not a group or channel", domain.ErrGroupNotFound, name)
	}

	handle := domain.GroupHandle{
		ID:         channel.ID,
		AccessHash: channel.AccessHash,
		Title:      channel.Title,
		Username:   name,
		Kind:       channelKind(channel),
		Private:    channel.Username == "",
	}

	full, err := c.api.ChannelsGetFullChannel(ctx, inputChannel(handle))
	if err != nil {
		// Member count is cosmetic at this point; enumeration establishes
		// the real total.
		c.log.Warn().Err(err).Str("group", name).Msg("get full channel failed")
		return handle, nil
	}
	if channelFull, ok := full.FullChat.(*tg.ChannelFull); ok {
		handle.MemberCount = channelFull.ParticipantsCount
	}
	return handle, nil
}

// ValidateAccess pre-flights a group for the given intent. It never returns
// an error: anything that prevents the intent comes back as a denied check.
func (c *Client) ValidateAccess(ctx context.Context, link string, intent domain.AccessIntent) domain.AccessCheck {
	handle, err := c.Resolve(ctx, link)
	if err != nil {
		return domain.AccessCheck{Allowed: false, Reason: err.Error()}
	}
	if handle.Kind == domain.GroupKindGroup {
		return domain.AccessCheck{
			MemberCount: handle.MemberCount,
			Reason:      "legacy groups are not supported, upgrade to a supergroup",
		}
	}

	if intent == domain.AccessIntentInvite {
		if reason := c.inviteRightsReason(ctx, handle); reason != "" {
			return domain.AccessCheck{MemberCount: handle.MemberCount, Reason: reason}
		}
	}

	return domain.AccessCheck{Allowed: true, MemberCount: handle.MemberCount}
}

// inviteRightsReason returns a denial reason, or "" when inviting is allowed.
func (c *Client) inviteRightsReason(ctx context.Context, handle domain.GroupHandle) string {
	full, err := c.api.ChannelsGetFullChannel(ctx, inputChannel(handle))
	if err != nil {
		return fmt.Sprintf("cannot inspect group permissions: %v", err)
	}

	for _, chat := range full.Chats {
		channel, ok := chat.(*tg.Channel)
		if !ok || channel.ID != handle.ID {
			continue
		}
		if channel.Creator {
			return ""
		}
		if rights, ok := channel.GetAdminRights(); ok && rights.InviteUsers {
			return ""
		}
		return "the transfer account lacks invite permission in this group"
	}
	return "group permissions unavailable"
}

func inputChannel(handle domain.GroupHandle) *tg.InputChannel {
	return &tg.InputChannel{ChannelID: handle.ID, AccessHash: handle.AccessHash}
}

func findChannel(chats []tg.ChatClass) *tg.Channel {
	for _, chat := range chats {
		if channel, ok := chat.(*tg.Channel); ok {
			return channel
		}
	}
	return nil
}

func channelKind(channel *tg.Channel) domain.GroupKind {
	if channel.Megagroup || channel.Gigagroup {
		return domain.GroupKindSupergroup
	}
	if channel.Broadcast {
		return domain.GroupKindChannel
	}
	return domain.GroupKindGroup
}
