package notify

import (
	"net/url"
	"strings"

	"github.com/BearBump/DriverComm/internal/models"
)

func DriverLink(baseURL, loadID string) string {
	return strings.TrimRight(baseURL, "/") + "/driver/" + url.PathEscape(loadID)
}

func CreatedBody(l *models.Load, link string) string {
	return "Load " + l.ID + ": " + models.Lane(l.Origin, l.Destination) + ". Update status: " + link
}

// StatusBody: "Load {id}: {status}.[ ETA {eta}] {origin} → {destination}".
func StatusBody(l *models.Load) string {
	var b strings.Builder
	b.WriteString("Load ")
	b.WriteString(l.ID)
	b.WriteString(": ")
	b.WriteString(l.Status)
	b.WriteString(".")
	if l.ETA != "" {
		b.WriteString(" ETA ")
		b.WriteString(l.ETA)
	}
	b.WriteString(" ")
	b.WriteString(models.Lane(l.Origin, l.Destination))
	return b.String()
}

func StatusSubject(l *models.Load) string {
	return "Load " + l.ID + ": " + l.Status
}

func DirectBody(loadID, body string) string {
	return "Load " + loadID + ": " + body
}
