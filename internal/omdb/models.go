package omdb

// Response is the raw OMDb title response.
type Response struct {
	Title      string       `json:"Title"`
	Year       string       `json:"Year"`
	ImdbID     string       `json:"imdbID"`
	ImdbRating string       `json:"imdbRating"`
	ImdbVotes  string       `json:"imdbVotes"`
	Metascore  string       `json:"Metascore"`
	Awards     string       `json:"Awards"`
	Ratings    []RatingItem `json:"Ratings"`
	Response   string       `json:"Response"`
	Error      string       `json:"Error"`
}

// RatingItem is a single rating entry in an OMDb response.
type RatingItem struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Rating is a normalized rating from one source, e.g.
// {"Internet Movie Database", "8.7/10"} or {"Rotten Tomatoes", "83%"}.
type Rating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}
