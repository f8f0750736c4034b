package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

// participantsPageSize is the server-side maximum for one participants page.
const participantsPageSize = 200

// Enumerate lists up to limit members of the source group, most recently
// joined first. Deleted accounts are dropped here; bots pass through so the
// caller can count them as skipped.
func (c *Client) Enumerate(ctx context.Context, source domain.GroupHandle, limit int) ([]domain.Member, error) {
	channel := inputChannel(source)
	members := make([]domain.Member, 0, min(limit, participantsPageSize))

	for offset := 0; len(members) < limit; {
		pageSize := min(participantsPageSize, limit-len(members))
		raw, err := c.api.ChannelsGetParticipants(ctx, &tg.ChannelsGetParticipantsRequest{
			Channel: channel,
			Filter:  &tg.ChannelParticipantsRecent{},
			Offset:  offset,
			Limit:   pageSize,
		})
		if err != nil {
			return nil, errors.Wrap(err, "get participants")
		}

		page, ok := raw.(*tg.ChannelsChannelParticipants)
		if !ok {
			// channels.channelParticipantsNotModified cannot happen with a
			// zero hash; treat anything else as an empty page.
			break
		}
		if len(page.Participants) == 0 {
			break
		}
		offset += len(page.Participants)

		for _, user := range page.Users {
			u, ok := user.(*tg.User)
			if !ok || u.Deleted {
				continue
			}
			members = append(members, domain.Member{
				ID:         u.ID,
				AccessHash: u.AccessHash,
				Username:   u.Username,
				FirstName:  u.FirstName,
				LastName:   u.LastName,
				Phone:      u.Phone,
				Bot:        u.Bot,
				Premium:    u.Premium,
				Status:     domain.MemberStatusMember,
			})
			if len(members) == limit {
				break
			}
		}
	}

	c.log.Debug().Int64("group_id", source.ID).Int("members", len(members)).Msg("enumerated source group")
	return members, nil
}
