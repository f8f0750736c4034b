package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

func TestValidateGroupSuccess(t *testing.T) {
	t.Parallel()

	client := &fakeClient{members: makeMembers(3)}
	uc := app.NewValidateGroup(&fakeFactory{client: client}, zerolog.Nop())

	out, err := uc.Execute(context.Background(), app.ValidateGroupInput{
		GroupLink: "https://t.me/sourcegroup",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.GroupInfo == nil {
		t.Fatal("expected group info for a resolvable group")
	}
	if !out.Validation.CanAccess || !out.Validation.CanInvite {
		t.Fatalf("validation = %+v, want full access", out.Validation)
	}
	if out.Validation.MemberCount != 3 {
		t.Errorf("member count = %d, want 3", out.Validation.MemberCount)
	}
	if client.closeCalls != 1 {
		t.Errorf("close calls = %d, want 1", client.closeCalls)
	}
}

func TestValidateGroupInvalidLink(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{client: &fakeClient{}}
	uc := app.NewValidateGroup(factory, zerolog.Nop())

	_, err := uc.Execute(context.Background(), app.ValidateGroupInput{
		GroupLink: "https://example.com/foo",
	})
	if !errors.Is(err, app.ErrInvalidGroupLink) {
		t.Fatalf("err = %v, want ErrInvalidGroupLink", err)
	}
	if factory.connects != 0 {
		t.Errorf("connect calls = %d, want 0 for an invalid link", factory.connects)
	}
}

func TestValidateGroupConnectFailure(t *testing.T) {
	t.Parallel()

	uc := app.NewValidateGroup(&fakeFactory{err: errors.New("dc unreachable")}, zerolog.Nop())

	_, err := uc.Execute(context.Background(), app.ValidateGroupInput{
		GroupLink: "https://t.me/sourcegroup",
	})
	if !errors.Is(err, app.ErrGroupValidation) {
		t.Fatalf("err = %v, want ErrGroupValidation", err)
	}
}

func TestValidateGroupReportsDeniedAccess(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		checks: map[domain.AccessIntent]domain.AccessCheck{
			domain.AccessIntentInvite: {Allowed: false, Reason: "missing invite permission"},
		},
	}
	uc := app.NewValidateGroup(&fakeFactory{client: client}, zerolog.Nop())

	out, err := uc.Execute(context.Background(), app.ValidateGroupInput{
		GroupLink: "https://t.me/targetgroup",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Validation.CanInvite {
		t.Error("expected CanInvite to be false")
	}
	if out.Validation.Error != "missing invite permission" {
		t.Errorf("validation error = %q, want the denial reason", out.Validation.Error)
	}
}

func TestValidateGroupLogsCloseFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	client := &fakeClient{closeErr: errors.New("connection already gone")}
	uc := app.NewValidateGroup(&fakeFactory{client: client}, zerolog.New(&buf))

	if _, err := uc.Execute(context.Background(), app.ValidateGroupInput{
		GroupLink: "https://t.me/sourcegroup",
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(buf.String(), "close telegram client failed") {
		t.Fatalf("log output %q, want the close failure recorded", buf.String())
	}
	if !strings.Contains(buf.String(), "connection already gone") {
		t.Fatalf("log output %q, want the close error message", buf.String())
	}
}
