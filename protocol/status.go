package protocol

// statusText maps the status codes commonly returned inside batch
// responses to their reason phrases. Codes outside the table map to
// "Unknown" rather than consulting the full HTTP registry, matching
// the wire behavior of the protocol's JSON format which carries no
// reason phrase at all.
var statusText = map[int]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	409: "Conflict",
	500: "Internal Server Error",
}

// StatusText returns the reason phrase for a sub-response status code.
func StatusText(status int) string {
	if text, ok := statusText[status]; ok {
		return text
	}
	return "Unknown"
}
