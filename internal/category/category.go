// Package category assigns test names to coarse functional groups.
package category

import "strings"

// Other is the catch-all category for names no keyword matches.
const Other = "other"

// Group is one category and the keywords that select it.
type Group struct {
	Name     string
	Keywords []string
}

// Groups is the classification table in priority order. A name matching
// keywords from two groups belongs to the one listed first.
var Groups = []Group{
	{"cache", []string{"cache."}},
	{"closures", []string{"clonefunction", "hookfunction", "newcclosure", "newlclosure", "iscclosure", "islclosure", "isexecutorclosure", "restorefunction", "checkcaller", "getfunctionhash", "getcallingscript"}},
	{"crypt", []string{"crypt.", "base64", "lz4", "encrypt", "decrypt", "generatekey", "generatebytes"}},
	{"debug", []string{"debug."}},
	{"filesystem", []string{"readfile", "writefile", "appendfile", "loadfile", "listfiles", "isfile", "isfolder", "makefolder", "delfolder", "delfile", "getcustomasset", "dofile"}},
	{"input", []string{"mouse", "keyboard", "isrbxactive", "click"}},
	{"instances", []string{"getinstances", "getnilinstances", "cloneref", "compareinstances", "gethui", "fireclickdetector", "fireproximityprompt", "firetouchinterest", "getcallbackvalue"}},
	{"metatable", []string{"getrawmetatable", "setrawmetatable", "hookmetamethod", "getnamecallmethod", "isreadonly", "setreadonly", "metatable"}},
	{"drawing", []string{"drawing.", "isrenderobj", "getrenderproperty", "setrenderproperty", "cleardrawcache"}},
	{"websocket", []string{"websocket"}},
	{"console", []string{"rconsole", "console"}},
	{"scripts", []string{"loadstring", "decompile", "getscripts", "getrunningscripts", "getloadedmodules", "getscriptbytecode", "getscripthash", "getscriptclosure", "getsenv", "getgc", "filtergc", "getgenv", "getrenv"}},
	{"signals", []string{"firesignal", "getconnections", "replicatesignal"}},
	{"reflection", []string{"gethiddenproperty", "sethiddenproperty", "isscriptable", "setscriptable", "getthreadidentity", "setthreadidentity"}},
	{"misc", []string{"identifyexecutor", "request", "setfpscap", "setclipboard", "messagebox", "queue_on_teleport"}},
}

// Classify returns the first category whose keyword is a substring of the
// lower-cased name, or Other.
func Classify(name string) string {
	lower := strings.ToLower(name)
	for _, g := range Groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Name
			}
		}
	}
	return Other
}

// Names returns every category name in priority order, Other last.
func Names() []string {
	out := make([]string, 0, len(Groups)+1)
	for _, g := range Groups {
		out = append(out, g.Name)
	}
	return append(out, Other)
}
