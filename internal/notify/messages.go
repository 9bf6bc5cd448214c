package notify

import (
	"fmt"
	"time"

	"github.com/campushub/backend/internal/models"
)

// excerptRunes is how much of a comment body is quoted in its notification.
const excerptRunes = 50

type text struct {
	title   string
	message string
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) > excerptRunes {
		r = r[:excerptRunes]
	}
	return string(r)
}

func commentText(kind models.NotificationType, author, content string) text {
	if kind == models.NotificationReply {
		return text{
			title:   fmt.Sprintf("%s replied to your comment", author),
			message: fmt.Sprintf("%s replied: \"%s...\"", author, excerpt(content)),
		}
	}
	return text{
		title:   fmt.Sprintf("%s commented on your post", author),
		message: fmt.Sprintf("%s commented: \"%s...\"", author, excerpt(content)),
	}
}

func postText(author, title string) text {
	return text{
		title:   fmt.Sprintf("New post by %s", author),
		message: fmt.Sprintf("%s published: \"%s\"", author, title),
	}
}

func organizerRegistrationText(registrant, event string) text {
	return text{
		title:   fmt.Sprintf("New registration for %s", event),
		message: fmt.Sprintf("%s registered for your event \"%s\"", registrant, event),
	}
}

func registrantRegistrationText(event string) text {
	return text{
		title:   "Registration confirmed",
		message: fmt.Sprintf("You successfully registered for \"%s\"", event),
	}
}

func likeText(liker, title string) text {
	return text{
		title:   fmt.Sprintf("%s liked your post", liker),
		message: fmt.Sprintf("%s liked \"%s\"", liker, title),
	}
}

func reminderText(event string, day time.Time) text {
	return text{
		title:   fmt.Sprintf("Upcoming: %s", event),
		message: fmt.Sprintf("\"%s\" takes place on %s", event, day.Format(models.DateLayout)),
	}
}

func postLink(postID string) string {
	return fmt.Sprintf("/post/%s/", postID)
}

func eventLink(eventID uint) string {
	return fmt.Sprintf("/event/%d/", eventID)
}
