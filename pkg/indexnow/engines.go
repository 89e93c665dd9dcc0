package indexnow

import (
	"fmt"
	"sort"
	"strings"
)

// Engine is a search engine accepting IndexNow submissions. Engines share
// submissions with each other, so notifying any one of them is enough.
type Engine struct {
	Name     string
	Endpoint EndpointURL
}

var engines = map[string]Engine{
	"indexnow": {Name: "indexnow", Endpoint: defaultEndpoint},
	"bing":     {Name: "bing", Endpoint: mustParseEndpoint("https://www.bing.com/indexnow")},
	"naver":    {Name: "naver", Endpoint: mustParseEndpoint("https://searchadvisor.naver.com/indexnow")},
	"seznam":   {Name: "seznam", Endpoint: mustParseEndpoint("https://search.seznam.cz/indexnow")},
	"yandex":   {Name: "yandex", Endpoint: mustParseEndpoint("https://yandex.com/indexnow")},
	"yep":      {Name: "yep", Endpoint: mustParseEndpoint("https://indexnow.yep.com/indexnow")},
}

// Engines returns the known engines sorted by name.
func Engines() []Engine {
	list := make([]Engine, 0, len(engines))
	for _, e := range engines {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// LookupEngine finds a known engine by case-insensitive name.
func LookupEngine(name string) (Engine, error) {
	e, ok := engines[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Engine{}, fmt.Errorf("unknown engine %q", name)
	}
	return e, nil
}
