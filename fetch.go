package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/urfave/cli/v2"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "download the gpx files linked from a web page",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "page to scan for gpx links"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "directory for the downloaded files"},
			&cli.BoolFlag{Name: "overwrite", Usage: "replace files that already exist"},
		},
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	LOG = true

	links, err := scrapeLinks(c.String("url"))
	if err != nil {
		return err
	}
	if len(links) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no gpx links found.")
		return nil
	}
	logf("found %d gpx links\n", len(links))

	outdir := c.String("out")
	if err := os.MkdirAll(outdir, 0777); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	for _, link := range links {
		if err := downloadFile(link, outdir, c.Bool("overwrite")); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

// scrapeLinks returns the absolute urls of the gpx files linked from the
// page, in document order, without duplicates.
func scrapeLinks(pageURL string) ([]string, error) {
	response, err := http.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("getting %q: %w", pageURL, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getting %q: unexpected status %s", pageURL, response.Status)
	}
	dom, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", pageURL, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", pageURL, err)
	}

	var links []string
	seen := map[string]bool{}
	dom.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if !strings.EqualFold(path.Ext(resolved.Path), ".gpx") {
			return
		}
		if link := resolved.String(); !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})
	return links, nil
}

// downloadFile saves the url into dir, named after the last path element.
// Existing files are left alone unless overwrite is set.
func downloadFile(link, dir string, overwrite bool) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("parsing url %q: %w", link, err)
	}
	name := path.Base(u.Path)
	fpath := filepath.Join(dir, name)
	if !overwrite {
		if _, err := os.Stat(fpath); err == nil {
			logln("skipping", name, "(already exists)")
			return nil
		}
	}

	response, err := http.Get(link)
	if err != nil {
		return fmt.Errorf("getting %q: %w", link, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("getting %q: unexpected status %s", link, response.Status)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("downloading %q: %w", link, err)
	}
	if err := os.WriteFile(fpath, data, 0644); err != nil {
		return fmt.Errorf("writing %q: %w", fpath, err)
	}
	logln("downloaded", name)
	return nil
}
