// Package api provides the read-only REST API for indexed blocks
// @title subindex API
// @version 1.0
// @description REST API for querying finalized blocks indexed by subindex
// @contact.name API Support
// @contact.url https://github.com/goran-ethernal/subindex
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /
// @schemes http https
package api
