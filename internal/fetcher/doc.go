// Package fetcher renders web pages into HTML for the listing extractor.
//
// Two renderers implement the Renderer interface:
//
//   - HTTPRenderer fetches the raw server response with net/http. It is used
//     for discovery probes and for sites that render listings on the server.
//   - BrowserRenderer drives a headless Chromium through go-rod with the
//     stealth evasions applied, waits for the page to settle, dismisses the
//     cookie banner and returns the live DOM.
//
// A Renderer is owned by one goroutine. Batch workers each create their own
// through a Factory, so no page or DOM is shared between companies.
//
// # Usage
//
//	r := fetcher.NewHTTPRenderer(fetcher.WithUserAgent(ua))
//	defer r.Close()
//	page, err := r.Render(ctx, "https://acme.com/careers")
package fetcher
