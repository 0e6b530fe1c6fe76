// Package content walks product content trees.
package content

import "github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"

// FlattenFiles lists every file reachable from modules, depth first. A
// module's own files come before the files of its child modules, and sibling
// order is preserved. The input is not modified.
func FlattenFiles(modules []models.ContentModule) []models.ProductFile {
	files := []models.ProductFile{}
	for _, m := range modules {
		files = appendModule(files, m)
	}
	return files
}

func appendModule(files []models.ProductFile, m models.ContentModule) []models.ProductFile {
	files = append(files, m.Files...)
	for _, child := range m.Modules {
		files = appendModule(files, child)
	}
	return files
}

// FindFile returns the first file with the given id in flattened order.
func FindFile(modules []models.ContentModule, id string) (models.ProductFile, bool) {
	for _, f := range FlattenFiles(modules) {
		if f.ID == id {
			return f, true
		}
	}
	return models.ProductFile{}, false
}

// CountModules returns the number of modules in the tree, nested ones included.
func CountModules(modules []models.ContentModule) int {
	n := len(modules)
	for _, m := range modules {
		n += CountModules(m.Modules)
	}
	return n
}
