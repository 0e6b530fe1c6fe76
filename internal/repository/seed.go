package repository

import "github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"

// samplePDF is a one-page blank PDF shipped inline so the seed catalog has an
// embedded document to exercise the viewer with.
const samplePDF = "data:application/pdf;base64," +
	"JVBERi0xLjQKMSAwIG9iaiA8PCAvVHlwZSAvQ2F0YWxvZyAvUGFnZXMgMiAwIFIgPj4gZW5kb2JqCjIgMCBvYmog" +
	"PDwgL1R5cGUgL1BhZ2VzIC9LaWRzIFszIDAgUl0gL0NvdW50IDEgPj4gZW5kb2JqCjMgMCBvYmogPDwgL1R5cGUg" +
	"L1BhZ2UgL1BhcmVudCAyIDAgUiAvTWVkaWFCb3ggWzAgMCAyMDAgMTAwXSA+PiBlbmRvYmoKdHJhaWxlciA8PCAv" +
	"Um9vdCAxIDAgUiA+PgolJUVPRgo="

// SeedProducts returns the default catalog.
func SeedProducts() []models.Product {
	return []models.Product{
		{
			ID:          1,
			Name:        "Go Concurrency Handbook",
			Description: "A practical e-book on goroutines, channels and sync.",
			Price:       "₹500",
			Category:    "E-Book",
			Modules: []models.ContentModule{
				{
					ID:    "handbook",
					Title: "Handbook",
					Files: []models.ProductFile{
						{ID: "handbook-sample", Name: "Sample Chapter", Type: models.FileTypePDF, URL: samplePDF},
						{ID: "handbook-full", Name: "Full Book", Type: models.FileTypePDF, URL: "https://cdn.example.com/books/go-concurrency.pdf"},
					},
				},
			},
		},
		{
			ID:          2,
			Name:        "Cloud Native Patterns Course",
			Description: "Video course with worksheets and reference links.",
			Price:       "₹1,499",
			SalePrice:   "₹999",
			Category:    "Course",
			Modules: []models.ContentModule{
				{
					ID:    "intro",
					Title: "Introduction",
					Files: []models.ProductFile{
						{ID: "intro-welcome", Name: "Welcome", Type: models.FileTypeYouTube, URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
						{ID: "intro-syllabus", Name: "Syllabus", Type: models.FileTypePDF, URL: samplePDF},
					},
					Modules: []models.ContentModule{
						{
							ID:    "intro-setup",
							Title: "Environment Setup",
							Files: []models.ProductFile{
								{ID: "setup-video", Name: "Setting Up", Type: models.FileTypeVideo, URL: "https://cdn.example.com/courses/cnp/setup.mp4"},
							},
						},
					},
				},
				{
					ID:    "patterns",
					Title: "Patterns",
					Files: []models.ProductFile{
						{ID: "patterns-podcast", Name: "Patterns Podcast", Type: models.FileTypeAudio, URL: "https://cdn.example.com/courses/cnp/podcast.mp3"},
						{ID: "patterns-reading", Name: "Further Reading", Type: models.FileTypeLink, URL: "https://12factor.net"},
					},
				},
			},
		},
		{
			ID:          3,
			Name:        "Interview Prep Kit",
			Description: "Question bank and templates.",
			Price:       "₹300",
			Category:    "Bundle",
			Modules: []models.ContentModule{
				{
					ID:    "kit",
					Title: "Kit",
					Files: []models.ProductFile{
						{ID: "kit-questions", Name: "Question Bank", Type: models.FileTypePDF, URL: "https://cdn.example.com/kits/questions.pdf"},
						{ID: "kit-templates", Name: "Templates", Type: models.FileTypeOther, URL: "https://cdn.example.com/kits/templates.zip"},
					},
				},
			},
		},
		{
			ID:          4,
			Name:        "Pro Membership (Monthly)",
			Description: "All courses, billed monthly.",
			Price:       "₹199",
			Category:    "Subscription",
		},
		{
			ID:          5,
			Name:        "Pro Membership (Annual)",
			Description: "All courses, billed yearly.",
			Price:       "₹1,999",
			SalePrice:   "₹1,499",
			Category:    "Subscription",
		},
	}
}
