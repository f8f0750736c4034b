package transfer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

type ValidateGroupInput struct {
	GroupLink string
}

type GroupInfoOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Username    string `json:"username,omitempty"`
	MemberCount int    `json:"member_count"`
	Type        string `json:"type"`
	IsPrivate   bool   `json:"is_private"`
}

type GroupValidationOutput struct {
	CanAccess   bool   `json:"can_access"`
	CanInvite   bool   `json:"can_invite"`
	MemberCount int    `json:"member_count"`
	Error       string `json:"error,omitempty"`
}

type ValidateGroupOutput struct {
	GroupInfo  *GroupInfoOutput      `json:"group_info"`
	Validation GroupValidationOutput `json:"validation"`
}

type ValidateGroup interface {
	Execute(ctx context.Context, in ValidateGroupInput) (ValidateGroupOutput, error)
}

type validateGroup struct {
	factory ClientFactory
	log     zerolog.Logger
}

func NewValidateGroup(factory ClientFactory, logger zerolog.Logger) ValidateGroup {
	return &validateGroup{
		factory: factory,
		log:     logger.With().Str("component", "validate-group").Logger(),
	}
}

// Execute pre-flights a group link before a transfer is purchased or
// started: resolves the group and checks both readability and
// invitability on a short-lived connection.
func (uc *validateGroup) Execute(ctx context.Context, in ValidateGroupInput) (ValidateGroupOutput, error) {
	if _, err := domain.ParseGroupLink(in.GroupLink); err != nil {
		return ValidateGroupOutput{}, ErrInvalidGroupLink
	}

	client, err := uc.factory.Connect(ctx)
	if err != nil {
		return ValidateGroupOutput{}, fmt.Errorf("%w: %v", ErrGroupValidation, err)
	}
	defer func() {
		if cerr := client.Close(context.WithoutCancel(ctx)); cerr != nil {
			uc.log.Warn().Err(cerr).Str("group_link", in.GroupLink).Msg("close telegram client failed")
		}
	}()

	out := ValidateGroupOutput{}

	handle, err := client.Resolve(ctx, in.GroupLink)
	if err == nil {
		out.GroupInfo = &GroupInfoOutput{
			ID:          handle.ID,
			Title:       handle.Title,
			Username:    handle.Username,
			MemberCount: handle.MemberCount,
			Type:        string(handle.Kind),
			IsPrivate:   handle.Private,
		}
	}

	read := client.ValidateAccess(ctx, in.GroupLink, domain.AccessIntentRead)
	invite := client.ValidateAccess(ctx, in.GroupLink, domain.AccessIntentInvite)

	out.Validation = GroupValidationOutput{
		CanAccess:   read.Allowed,
		CanInvite:   invite.Allowed,
		MemberCount: read.MemberCount,
	}
	if !read.Allowed {
		out.Validation.Error = read.Reason
	} else if !invite.Allowed {
		out.Validation.Error = invite.Reason
	}

	return out, nil
}
