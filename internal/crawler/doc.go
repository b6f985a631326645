// Package crawler drives a renderer across the pages of one company: the
// listing page and the job pages it links to.
//
// # Architecture
//
// The Spider owns one fetcher.Renderer. ScrapeListing renders the listing
// page, strips it with dom.ParseClean and runs the listing engine over it.
// The resulting links are filtered and deduplicated before ScrapeJobs visits
// each of them and runs the posting heuristic.
//
// Design decision: A Spider is bound to a single company and is not shared
// between goroutines because:
//  1. Browser tabs are stateful and render one page at a time
//  2. Per-site cookies and headers live on the renderer
//  3. The visited set only makes sense within one site
//
// # Filtering
//
// Job URLs go through, in order:
//   - Non-navigable links (javascript:, mailto:, missing href) are dropped
//   - Duplicates are dropped after normalization
//   - Ignore and follow glob patterns are applied to the URL path
//   - The list is capped at the configured maximum
//
// # Usage
//
//	spider := crawler.NewSpider(renderer, crawler.WithMaxJobs(20))
//	listing, err := spider.ScrapeListing(ctx, "https://acme.com/careers/openings")
//	jobs, err := spider.ScrapeJobs(ctx, "acme.com", listing.JobURLs)
package crawler
