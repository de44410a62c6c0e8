package model

// MovieID uniquely identifies a movie entry
type MovieID string

// DefaultLanguage is used when a movie is added without a language
const DefaultLanguage = "Unknown"

// Movie is an entry in exactly one user's watchlist
type Movie struct {
	ID       MovieID `json:"id"`
	Title    string  `json:"title"`
	Language string  `json:"language"`
	Overview string  `json:"overview"`
	Watched  bool    `json:"watched"`
}

// WatchStatus filters a watchlist by watched state
type WatchStatus string

const (
	StatusAll       WatchStatus = ""
	StatusWatched   WatchStatus = "watched"
	StatusUnwatched WatchStatus = "unwatched"
)

// ParseWatchStatus validates a status filter value
func ParseWatchStatus(s string) (WatchStatus, error) {
	switch WatchStatus(s) {
	case StatusAll, StatusWatched, StatusUnwatched:
		return WatchStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Matches reports whether the movie passes the filter
func (s WatchStatus) Matches(m Movie) bool {
	switch s {
	case StatusWatched:
		return m.Watched
	case StatusUnwatched:
		return !m.Watched
	default:
		return true
	}
}

// FilterMovies returns the movies passing the filter, keeping their relative order
func FilterMovies(movies []Movie, status WatchStatus) []Movie {
	result := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if status.Matches(m) {
			result = append(result, m)
		}
	}
	return result
}
