// Package discovery locates a company's careers page and, on it, the link
// to the page that actually lists the open positions.
//
// FindCareerPage tries, in order:
//  1. anchors on the home page whose href contains a careers keyword
//  2. careers-like subdomains (careers.acme.com, jobs.acme.com, ...)
//  3. careers-like paths (/careers, /jobs, ...)
//  4. <loc> entries of /sitemap.xml and /sitemap_index.xml
//
// The first hit wins. Finding nothing is a normal outcome and is reported
// as model.SourceNone with a nil error.
package discovery
