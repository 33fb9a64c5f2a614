package trends

// Topic is a trending marketing topic. Mentions are per 30 days.
type Topic struct {
	Topic      string   `json:"topic"`
	Mentions   int      `json:"mentions"`
	Growth     string   `json:"growth"`
	Sentiment  string   `json:"sentiment"`
	Regions    []string `json:"regions"`
	Industries []string `json:"industries"`
}

type ContentFormat struct {
	Format      string `json:"format"`
	Performance int    `json:"performance"`
	Trend       string `json:"trend"`
	Engagement  int    `json:"engagement"`
	Reach       int    `json:"reach"`
}

type AgeGroup struct {
	AgeGroup   string `json:"age_group"`
	Percentage int    `json:"percentage"`
	Trend      string `json:"trend"`
}

type MonthlyEngagement struct {
	Month      string `json:"month"`
	Engagement int    `json:"engagement"`
	Conversion int    `json:"conversion"`
	Reach      int    `json:"reach"`
	Clicks     int    `json:"clicks"`
}

type IndustryInsight struct {
	Industry    string   `json:"industry"`
	GrowthRate  string   `json:"growth_rate"`
	TopChannels []string `json:"top_channels"`
	AvgBudget   string   `json:"avg_budget"`
	ROI         string   `json:"roi"`
}

const (
	northAmerica = "North America"
	europe       = "Europe"
	asiaPacific  = "Asia Pacific"
	latinAmerica = "Latin America"
	global       = "Global"
)

var topics = []Topic{
	{"AI & Automation", 18450, "+27%", "positive", []string{northAmerica, europe, asiaPacific, global}, []string{"Technology", "Finance", "Retail", "Healthcare"}},
	{"Sustainability", 15320, "+19%", "positive", []string{europe, northAmerica, global}, []string{"Retail", "Technology", "Entertainment"}},
	{"Remote Work", 11875, "+8%", "neutral", []string{northAmerica, europe}, []string{"Technology", "Finance", "Education"}},
	{"Mental Health", 13210, "+22%", "positive", []string{northAmerica, europe, latinAmerica}, []string{"Healthcare", "Education", "Entertainment"}},
	{"Digital Privacy", 9640, "+14%", "negative", []string{europe, global}, []string{"Technology", "Finance"}},
	{"Personalization", 12030, "+17%", "positive", []string{northAmerica, asiaPacific, global}, []string{"Retail", "Technology", "Entertainment", "Finance"}},
	{"Voice Commerce", 6210, "+11%", "neutral", []string{northAmerica, asiaPacific}, []string{"Retail", "Technology"}},
	{"Social Commerce", 16780, "+31%", "positive", []string{asiaPacific, latinAmerica, global}, []string{"Retail", "Entertainment"}},
}

var contentFormats = []ContentFormat{
	{"Video Content", 94, "up", 68, 77},
	{"Interactive Posts", 86, "up", 61, 54},
	{"Stories", 81, "up", 57, 63},
	{"Carousel Posts", 74, "down", 49, 45},
	{"Live Streams", 79, "up", 66, 41},
	{"Podcasts", 68, "down", 44, 36},
}

var demographics = []AgeGroup{
	{"18-24", 27, "up"},
	{"25-34", 38, "up"},
	{"35-44", 24, "stable"},
	{"45-54", 18, "down"},
	{"55+", 13, "up"},
}

var engagement = []MonthlyEngagement{
	{"Jan", 64, 12, 41200, 2310},
	{"Feb", 66, 13, 43850, 2480},
	{"Mar", 71, 15, 47100, 3020},
	{"Apr", 69, 14, 46300, 2890},
	{"May", 73, 17, 51800, 3410},
	{"Jun", 75, 18, 54200, 3760},
	{"Jul", 72, 16, 52900, 3550},
	{"Aug", 70, 15, 50100, 3300},
	{"Sep", 77, 19, 58600, 4120},
	{"Oct", 80, 21, 61900, 4480},
	{"Nov", 84, 23, 66400, 5010},
	{"Dec", 82, 22, 64700, 4870},
}

var industryInsights = []IndustryInsight{
	{"Technology", "+24%", []string{"Social Media", "Content Marketing", "Paid Ads"}, "$65K", "310%"},
	{"Healthcare", "+15%", []string{"Email", "Content Marketing", "Social Media"}, "$48K", "240%"},
	{"Finance", "+12%", []string{"Paid Ads", "Email", "Content Marketing"}, "$70K", "280%"},
	{"Retail", "+21%", []string{"Social Media", "Paid Ads", "Email"}, "$42K", "330%"},
	{"Education", "+9%", []string{"Content Marketing", "Social Media", "Email"}, "$25K", "190%"},
	{"Entertainment", "+18%", []string{"Social Media", "Paid Ads", "Content Marketing"}, "$38K", "260%"},
}
