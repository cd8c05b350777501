package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/perfectcircle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const appURL = "https://circle.example"

type recordingSharer struct {
	err  error
	msgs []ShareMessage
}

func (r *recordingSharer) Share(_ context.Context, msg ShareMessage) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestComposeShare(t *testing.T) {
	Convey("Given a score of 87", t, func() {
		Convey("When composing a score share", func() {
			msg := ComposeShare(87, ShareScore, appURL)

			Convey("Then the wording invites others to beat it", func() {
				So(msg.Title, ShouldEqual, "Perfect Circle Score")
				So(msg.Text, ShouldEqual, "🎯 I scored 87% on Perfect Circle! Can you beat my score? Play now: "+appURL)
				So(msg.URL, ShouldEqual, appURL)
			})
		})

		Convey("When composing a challenge", func() {
			msg := ComposeShare(87, ShareChallenge, appURL)

			Convey("Then the wording is a challenge", func() {
				So(msg.Title, ShouldEqual, "Perfect Circle Challenge")
				So(msg.Text, ShouldEqual, "🎯 I scored 87% on Perfect Circle! Think you can do better? Challenge me: "+appURL)
			})
		})

		Convey("When the kind is unknown", func() {
			So(ComposeShare(87, "poster", appURL).Kind, ShouldEqual, ShareScore)
		})
	})
}

func TestShare(t *testing.T) {
	Convey("Given capabilities that record haptics", t, func() {
		var styles []Style
		haptics := HapticsFunc(func(_ context.Context, s Style) { styles = append(styles, s) })
		ctx := context.Background()

		Convey("When the sharer succeeds", func() {
			sharer := &recordingSharer{}
			out := Share(ctx, Capabilities{Haptics: haptics, Sharer: sharer}, ComposeShare(91, ShareScore, appURL))

			Convey("Then the message is shared without fallback and a light impact fires", func() {
				So(out.Shared, ShouldBeTrue)
				So(out.Fallback, ShouldBeEmpty)
				So(sharer.msgs, ShouldHaveLength, 1)
				So(styles, ShouldResemble, []Style{Light})
			})
		})

		Convey("When the sharer fails", func() {
			sharer := &recordingSharer{err: errors.New("sheet closed")}
			msg := ComposeShare(91, ShareChallenge, appURL)
			out := Share(ctx, Capabilities{Haptics: haptics, Sharer: sharer}, msg)

			Convey("Then the text is returned for the clipboard and a medium impact fires", func() {
				So(out.Shared, ShouldBeFalse)
				So(out.Fallback, ShouldEqual, msg.Text)
				So(styles, ShouldResemble, []Style{Medium})
			})
		})

		Convey("When no capabilities are present", func() {
			out := Share(ctx, Capabilities{}, ComposeShare(10, ShareScore, appURL))

			Convey("Then it falls back without panicking", func() {
				So(out.Shared, ShouldBeFalse)
				So(out.Fallback, ShouldNotBeEmpty)
			})
		})
	})
}

func TestCapabilitiesDefaults(t *testing.T) {
	Convey("Given empty capabilities", t, func() {
		caps := Capabilities{}.WithDefaults()

		Convey("Then every member is a no-op", func() {
			So(caps.Haptics, ShouldNotBeNil)
			So(caps.Notifier.Notify(context.Background(), model.Notification{}), ShouldBeNil)
			So(errors.Is(caps.Sharer.Share(context.Background(), ShareMessage{}), ErrShareUnavailable), ShouldBeTrue)
		})
	})
}

func TestHighScoreNotification(t *testing.T) {
	Convey("Given a high score", t, func() {
		n := HighScoreNotification(96, appURL)

		Convey("Then the notification carries the score and link", func() {
			So(n.ID, ShouldNotBeEmpty)
			So(n.Title, ShouldEqual, "🎯 Amazing Score!")
			So(n.Body, ShouldEqual, "You scored 96% on Perfect Circle! Share your achievement with friends!")
			So(n.Data["score"], ShouldEqual, 96)
			So(n.Data["url"], ShouldEqual, appURL)
			So(n.CreatedAt.IsZero(), ShouldBeFalse)
		})
	})
}

func TestWebhookNotifier(t *testing.T) {
	Convey("Given a notification endpoint", t, func() {
		var got notificationPayload
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
		}))
		defer srv.Close()

		n := NewWebhookNotifier(srv.URL, WithTimeout(time.Second))
		note := HighScoreNotification(93, appURL)

		Convey("When the endpoint accepts", func() {
			err := n.Notify(context.Background(), note)

			Convey("Then the payload is delivered", func() {
				So(err, ShouldBeNil)
				So(got.NotificationID, ShouldEqual, note.ID)
				So(got.Title, ShouldEqual, note.Title)
				So(got.Data["score"], ShouldEqual, float64(93))
			})
		})

		Convey("When the endpoint rejects", func() {
			status = http.StatusTooManyRequests
			err := n.Notify(context.Background(), note)

			Convey("Then a rejection error is returned", func() {
				So(errors.Is(err, ErrNotifyRejected), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "429")
			})
		})
	})

	Convey("Given no endpoint", t, func() {
		err := NewWebhookNotifier("").Notify(context.Background(), model.Notification{})

		Convey("Then notifications are disabled", func() {
			So(errors.Is(err, ErrNotifyDisabled), ShouldBeTrue)
		})
	})
}
