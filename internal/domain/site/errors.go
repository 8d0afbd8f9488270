package site

import "errors"

var (
	ErrSiteNotFound   = errors.New("site not found")
	ErrSiteNameExists = errors.New("site name already exists")
	ErrUnknownQRCode  = errors.New("QR code does not belong to any site")
)
