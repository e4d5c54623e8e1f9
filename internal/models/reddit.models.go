package models

type RedditAPIResponse struct {
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Data RedditAPIChildData `json:"data"`
}

type RedditAPIChildData struct {
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Selftext  string `json:"selftext"`
	Ups       int    `json:"ups"`
	ID        string `json:"id"`
}
