package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// POST /shorten - Create short URL, or return the existing one for a known URL
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		DefaultStatus: http.StatusOK,
		Summary:       "Create short URL",
		Description:   "Returns the short code for a URL, allocating a new one if the URL has not been shortened before.",
		Tags:          []string{"URLs"},
	}, urlHandler.CreateShortURL)

	// GET /{code} - Redirect to original URL
	huma.Register(api, huma.Operation{
		OperationID:   "redirect-to-url",
		Method:        http.MethodGet,
		Path:          "/{code}",
		DefaultStatus: http.StatusMovedPermanently,
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the original URL associated with the short code.",
		Tags:          []string{"URLs"},
	}, urlHandler.RedirectToURL)
}
