package portalurl

import (
	"net/url"
	"strings"

	"git.nurpath.academy/nurpath/portal/src/config"
)

const StaticPath = "/public"

var baseUrl = strings.TrimRight(config.Config.BaseUrl, "/")

// Only tests should need this; the base URL comes from config.
func SetGlobalBaseUrl(u string) {
	baseUrl = strings.TrimRight(u, "/")
}

type Q struct {
	Name  string
	Value string
}

func Url(path string, query []Q) string {
	result := baseUrl + "/" + trim(path)
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	return result
}

func StaticUrl(path string, query []Q) string {
	return Url(StaticPath+"/"+trim(path), query)
}

func trim(path string) string {
	return strings.TrimPrefix(path, "/")
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}
