package deploy

import "strings"

// RewriteStartCommand substitutes every occurrence of placeholder in template
// with the artifact file name. A template without the placeholder is returned as is.
func RewriteStartCommand(template, placeholder, artifactName string) string {
	if placeholder == "" {
		return template
	}

	return strings.ReplaceAll(template, placeholder, artifactName)
}
