package strategy

import (
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"

	"golang-market-intel/pkg/common"
)

// itemSourceKey holds the RSS <source> title of an entry in gofeed.Item.Custom.
const itemSourceKey = "item_source"

// sourceRSSTranslator is the default RSS translator plus the per-item <source>
// element, which aggregators such as Google News use to name the publisher.
type sourceRSSTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceRSSTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	result, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	rssFeed, ok := feed.(*rss.Feed)
	if !ok || len(rssFeed.Items) != len(result.Items) {
		return result, nil
	}
	for i, rssItem := range rssFeed.Items {
		if rssItem.Source == nil {
			continue
		}
		title := strings.TrimSpace(rssItem.Source.Title)
		if title == "" {
			continue
		}
		custom := make(map[string]string, len(result.Items[i].Custom)+1)
		for k, v := range result.Items[i].Custom {
			custom[k] = v
		}
		custom[itemSourceKey] = title
		result.Items[i].Custom = custom
	}
	return result, nil
}

// entrySource names the publisher of one entry: its own <source> when present,
// else "Google News" for Google News search feeds, else the feed's source.
func entrySource(item *gofeed.Item, feedSource string, googleNews bool) string {
	if item != nil {
		if title := item.Custom[itemSourceKey]; title != "" {
			return title
		}
	}
	if googleNews {
		return common.GoogleNewsSource
	}
	return feedSource
}
