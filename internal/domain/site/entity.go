package site

import "time"

// Site is a physical work location. Its QR token is printed on the poster employees scan.
type Site struct {
	ID        string
	Name      string
	Address   *string
	QRToken   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
