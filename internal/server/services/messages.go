package services

import (
	"fmt"

	"github.com/simplylizz/wannatalk/internal/server/models"
)

// User-facing copy for the matchmaking flow. Markdown links use the
// tg://user scheme so contacts work even for users without a username.
const (
	offerText = "Incoming request!\n\n" +
		"Someone wants to talk with you. Their native language is %s " +
		"and they want to practice %s.\n\n" +
		"Are you ready to help? If yes, you both will receive each other's contacts."

	acceptedRequesterText = "Good news! We've found someone who is ready to talk with you: %s, write something in %s."

	acceptedPairText = "Cool! Here is your companion: %s, write something in %s!"

	declinedPairText = "Ok, the request was declined.\n\n" +
		"We've marked your account as paused to prevent you from being " +
		"spammed with requests. If you want to keep receiving requests, " +
		"just set your search language again."

	declinedRequesterText = "Unfortunately your request was declined.\n\n" +
		"We won't disturb this person on your behalf again. We'll keep looking for someone else."

	offerAcceptLabel  = "Accept"
	offerDeclineLabel = "Decline"
)

// userLink renders a Markdown mention that opens a chat with the user.
func userLink(u *models.User) string {
	return fmt.Sprintf("[%s](tg://user?id=%d)", u.DisplayName(), u.TelegramID)
}
