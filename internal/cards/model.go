package cards

// Record is one row of card data; one record becomes one physical card.
type Record struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Fact   string `json:"fact,omitempty"`
	QRURL  string `json:"qr_url"`
	Code1  string `json:"code1,omitempty"`
	Code2  string `json:"code2,omitempty"`
}

// Sample is the record used for previews when no data has been uploaded.
var Sample = Record{
	Artist: "Daft Punk",
	Title:  "One More Time",
	Year:   "2000",
	QRURL:  "https://open.spotify.com/track/0DiWol3AO6WpXZgp0goxAV",
	Code1:  "SS-0001",
	Code2:  "A-SIDE",
}
