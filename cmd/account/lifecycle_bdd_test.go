package account

import (
	"context"
	"testing"
	"time"

	"accounts/cmd/security/code"

	"github.com/smartystreets/goconvey/convey"
)

func TestAccountLifecycle(t *testing.T) {
	convey.Convey("Given a registered account with an issued activation code", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()
		clock := newTestClock()
		svc := mustNewService(t, store, clock, code.Fixed("2468"))

		_, err := svc.Register(ctx, testEmail, testPassword)
		convey.So(err, convey.ShouldBeNil)

		d := &recordingDeliverer{}
		convey.So(svc.IssueActivationCode(ctx, testEmail, d.deliver), convey.ShouldBeNil)
		convey.So(d.sent[testEmail], convey.ShouldEqual, "2468")

		convey.Convey("When the holder presents the code before it expires", func() {
			clock.Advance(30 * time.Second)
			err := svc.Activate(ctx, testEmail, testPassword, "2468")

			convey.Convey("Then the account becomes activated", func() {
				convey.So(err, convey.ShouldBeNil)
				acct, err := store.FindByEmail(ctx, testEmail)
				convey.So(err, convey.ShouldBeNil)
				convey.So(acct.Status(), convey.ShouldEqual, StatusActivated)
			})

			convey.Convey("And a replay of the same code is rejected", func() {
				convey.So(svc.Activate(ctx, testEmail, testPassword, "2468"), convey.ShouldEqual, ErrAlreadyActivated)
			})
		})

		convey.Convey("When the code expires and a new one is issued", func() {
			clock.Advance(2 * time.Minute)
			convey.So(svc.Activate(ctx, testEmail, testPassword, "2468"), convey.ShouldEqual, ErrCodeExpired)

			convey.So(svc.AuthorizeReissue(ctx, testEmail, testPassword), convey.ShouldBeNil)
			svc.newCode = code.Fixed("1357")
			convey.So(svc.IssueActivationCode(ctx, testEmail, d.deliver), convey.ShouldBeNil)

			convey.Convey("Then only the new code activates the account", func() {
				convey.So(svc.Activate(ctx, testEmail, testPassword, "2468"), convey.ShouldEqual, ErrWrongCode)
				convey.So(svc.Activate(ctx, testEmail, testPassword, "1357"), convey.ShouldBeNil)
			})
		})
	})
}
