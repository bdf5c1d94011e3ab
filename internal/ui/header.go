// Package ui renders the OTP page to a terminal.
package ui

import (
	"fmt"
	"io"
)

// LogoURL is the hosted brand logo.
const LogoURL = "https://res.cloudinary.com/ddynvenje/image/upload/v1749205137/AHA/AHA-logo_vfsmvr.png"

// Header is the brand logo linking to the application root.
type Header struct {
	Href     string
	ImageURL string
	Alt      string
	Width    int
	Height   int
}

// DefaultHeader returns the brand header.
func DefaultHeader() Header {
	return Header{
		Href:     "/",
		ImageURL: LogoURL,
		Alt:      "Logo",
		Width:    200,
		Height:   200,
	}
}

// Render writes the header. With hyperlinks enabled the alt text becomes an
// OSC 8 link to Href followed by the image URL; otherwise both are printed
// in plain text.
func (h Header) Render(w io.Writer, hyperlinks bool) error {
	var err error
	if hyperlinks {
		_, err = fmt.Fprintf(w, "\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\ <%s>\n", h.Href, h.Alt, h.ImageURL)
	} else {
		_, err = fmt.Fprintf(w, "%s <%s> (%s, %dx%d)\n", h.Alt, h.ImageURL, h.Href, h.Width, h.Height)
	}
	return err
}
