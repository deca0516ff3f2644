package common

const (
	RunLockPrefix = "market-intel:run-lock:"

	DefaultUserAgent = "Mozilla/5.0 (compatible; MarketIntelBot/1.0)"

	// DefaultInsight is stored when the analysis response carries no insight.
	DefaultInsight = "Analysis pending review."

	// GoogleNewsSource names entries from Google News search feeds that carry no publisher.
	GoogleNewsSource = "Google News"
)
