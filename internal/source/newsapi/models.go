package newsapi

// headlinesResponse is the NewsAPI top-headlines envelope:
//
//	{"status": "ok", "totalResults": 10, "articles": [...]}
type headlinesResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

// sourcesResponse is the NewsAPI sources envelope.
type sourcesResponse struct {
	Status  string      `json:"status"`
	Sources []apiSource `json:"sources"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

type apiSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type apiArticle struct {
	Source      apiSource `json:"source"`
	Author      *string   `json:"author"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     *string   `json:"content"`
}
