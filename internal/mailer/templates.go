package mailer

import (
	"fmt"
	"time"
)

func OTPBody(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Your one-time password is <b>%s</b>. It expires in %d minutes.</p>
<p>If you did not request this code you can ignore this email.</p>`,
		name, code, int(ttl.Minutes()))
}

func BookingBody(name, advisor string, startAt time.Time, meetingLink string) string {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your consultation with %s is confirmed for <b>%s</b>.</p>`,
		name, advisor, startAt.Format("Monday, 2 Jan 2006 at 15:04"))
	if meetingLink != "" {
		body += fmt.Sprintf(`<p>Join online: <a href="%s">%s</a></p>`, meetingLink, meetingLink)
	}
	return body
}

func CancellationBody(name string, startAt time.Time) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Your consultation on <b>%s</b> has been cancelled. The slot is open again for other customers.</p>`,
		name, startAt.Format("Monday, 2 Jan 2006 at 15:04"))
}
