package logger

import (
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cast"
)

var defaultLevelMaps = map[int32]*level{
	TRACE: {TRACE, LevelTRACE, "T", []color.Attribute{color.FgCyan}},
	DEBUG: {DEBUG, LevelDEBUG, "D", []color.Attribute{color.FgGreen}},
	INFO:  {INFO, LevelINFO, "I", nil},
	WARN:  {WARN, LevelWARN, "W", []color.Attribute{color.FgYellow}},
	ERROR: {ERROR, LevelERROR, "E", []color.Attribute{color.FgRed}},
	FATAL: {FATAL, LevelFATAL, "F", []color.Attribute{color.FgMagenta}},
}

type level struct {
	id    int32
	name  string
	flag  string
	color []color.Attribute
}

func castToLevel(lv interface{}) int32 {
	if s, ok := lv.(string); ok {
		return string2Level(s)
	}
	return cast.ToInt32(lv)
}

func string2Level(lv string) int32 {
	switch strings.ToUpper(lv) {
	case LevelTRACE, LevelFlagTRACE:
		return TRACE
	case LevelDEBUG, LevelFlagDEBUG:
		return DEBUG
	case LevelINFO, LevelFlagINFO:
		return INFO
	case LevelWARN, LevelFlagWARN:
		return WARN
	case LevelERROR, LevelFlagERROR:
		return ERROR
	case LevelFATAL, LevelFlagFATAL:
		return FATAL
	default:
		return UNKNOWN
	}
}

func splitFile(path string) (dir, module, file string) {
	dir, file = filepath.Split(path)
	if dir != "" && dir[len(dir)-1] == '/' {
		dir, module = filepath.Split(dir[:len(dir)-1])
	}
	return
}
