package validator

import (
	"regexp"
	"strings"
)

const MaxCaptionChars = 100

// ImagePredicate decides whether an absolute URL points at an image the
// service is willing to reference.
type ImagePredicate func(rawURL string) bool

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"}

var imageHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`cloudinary\.com`),
	regexp.MustCompile(`amazonaws\.com`),
	regexp.MustCompile(`googleapis\.com`),
	regexp.MustCompile(`imgur\.com`),
	regexp.MustCompile(`unsplash\.com`),
	regexp.MustCompile(`pexels\.com`),
	regexp.MustCompile(`pixabay\.com`),
	regexp.MustCompile(`freepik\.com`),
	regexp.MustCompile(`picsum\.photos`),
	regexp.MustCompile(`placeholder\.com`),
}

// NewImagePredicate accepts a URL ending in one of extensions or matching one
// of hostPatterns. Matching is done on the lower-cased URL.
func NewImagePredicate(extensions []string, hostPatterns []*regexp.Regexp) ImagePredicate {
	return func(rawURL string) bool {
		lower := strings.ToLower(rawURL)
		for _, ext := range extensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		for _, rx := range hostPatterns {
			if rx.MatchString(lower) {
				return true
			}
		}
		return false
	}
}

func DefaultImagePredicate() ImagePredicate {
	return NewImagePredicate(imageExtensions, imageHostPatterns)
}

// ValidateCaption expects the caption already trimmed.
func ValidateCaption(v *Validator, caption string) {
	v.CheckNotBlank(caption, "caption", "must be provided")
	v.CheckMaxChars(caption, MaxCaptionChars, "caption", "must not be more than 100 characters long")
}

func ValidateImageURL(v *Validator, rawURL string, accept ImagePredicate) {
	if strings.TrimSpace(rawURL) == "" {
		v.AddError("image_url", "must be provided")
		return
	}
	if !IsAbsoluteURL(rawURL) {
		v.AddError("image_url", "must be a valid URL")
		return
	}
	v.Check(accept(rawURL), "image_url", "must link directly to an image file (.jpg, .png, ...) or a known image host")
}
