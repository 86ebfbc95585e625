package app

import "time"

type Config struct {
	URL            string
	Action         string
	CampaignMethod int
	Interval       time.Duration
	Count          int
	Timeout        time.Duration
	DBDriver       string
	DBPath         string
}
