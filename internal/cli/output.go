package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == outputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == outputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegisterResult:
		fmt.Fprintln(o.w, v.Message)
		o.printUser(v.User)
	case LoginResult:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "Token: %s\n", v.Token)
	case UserResult:
		if v.Message != "" {
			fmt.Fprintln(o.w, v.Message)
		}
		o.printUser(v.User)
	case MovieResult:
		if v.Message != "" {
			fmt.Fprintln(o.w, v.Message)
		}
		o.printMovie(v.Movie)
	case MoviesResult:
		o.printMovies(v.Movies)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s (%s)\n", v.Status, v.Server)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RegisterResult is the register response
type RegisterResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResult is the login response
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UserResult is the response for the current-account endpoints
type UserResult struct {
	Message string `json:"message,omitempty"`
	User    User   `json:"user"`
}

// Movie response type
type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Language string `json:"language"`
	Overview string `json:"overview"`
	Watched  bool   `json:"watched"`
}

// MovieResult is the response for single-movie endpoints
type MovieResult struct {
	Message string `json:"message,omitempty"`
	Movie   Movie  `json:"movie"`
}

// MoviesResult is the list response
type MoviesResult struct {
	Movies []Movie `json:"movies"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Server string `json:"server"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.ID)
}

func (o *Output) printMovie(m Movie) {
	fmt.Fprintf(o.w, "Movie: %s (%s)\n", m.Title, m.ID)
	fmt.Fprintf(o.w, "Language: %s\n", m.Language)
	if m.Overview != "" {
		fmt.Fprintf(o.w, "Overview: %s\n", m.Overview)
	}
	fmt.Fprintf(o.w, "Watched: %s\n", yesNo(m.Watched))
}

func (o *Output) printMovies(movies []Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(o.w, "No movies.")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLANGUAGE\tWATCHED")
	for _, m := range movies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Title, m.Language, yesNo(m.Watched))
	}
	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
