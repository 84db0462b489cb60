package logger

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type Option struct {
	Level        int32
	LevelName    string
	Console      io.Writer
	ConsoleColor bool
	depth        int
	formater     *Formater
	lmux         sync.RWMutex
	levelMaps    map[int32]*level
}

var defaultOption = &Option{
	Level:        TRACE,
	LevelName:    LevelTRACE,
	Console:      os.Stdout,
	ConsoleColor: true,
	formater:     MFormater("yyyy-MM-dd HH:mm:ss.SSSSSS [pid] [level] module/file:line msg", "\n"),
	levelMaps:    defaultLevelMaps,
}

func (opt *Option) Merge(aos ...*Option) *Option {
	oo := &Option{
		Level:        opt.Level,
		LevelName:    opt.LevelName,
		Console:      opt.Console,
		ConsoleColor: opt.ConsoleColor,
		depth:        opt.depth,
	}
	fmts, eol := opt.GetFormat()
	oo.SetFormat(fmts, eol)
	opt.lmux.RLock()
	for _, l := range opt.levelMaps {
		oo.SetLevelAttribute(l.id, l.name, l.flag, l.color)
	}
	opt.lmux.RUnlock()
	for _, a := range aos {
		oo.Level = a.Level
		oo.LevelName = a.LevelName
		if a.Console != nil {
			oo.Console = a.Console
		}
		oo.ConsoleColor = a.ConsoleColor
		if a.depth != 0 {
			oo.depth = a.depth
		}
		if a.formater != nil {
			fmts, eol := a.GetFormat()
			oo.SetFormat(fmts, eol)
		}
		a.lmux.RLock()
		for _, l := range a.levelMaps {
			oo.SetLevelAttribute(l.id, l.name, l.flag, l.color)
		}
		a.lmux.RUnlock()
	}
	return oo
}

func (opt *Option) SetFormat(fmt string, eol string) {
	if fmt == "" {
		fmt, _ = defaultOption.GetFormat()
	}
	if eol == "" {
		_, eol = defaultOption.GetFormat()
	}
	if opt.formater == nil {
		opt.formater = MFormater(fmt, eol)
	} else {
		opt.formater.SetFormat(fmt, eol)
	}
}

func (opt *Option) GetFormat() (fmt string, eol string) {
	if opt.formater == nil {
		return defaultOption.GetFormat()
	}
	return opt.formater.GetFormat()
}

func (opt *Option) SetLevelAttribute(id int32, name string, flag string, colours []color.Attribute) {
	opt.lmux.Lock()
	defer opt.lmux.Unlock()
	if opt.levelMaps == nil {
		opt.levelMaps = map[int32]*level{}
		for n, l := range defaultLevelMaps {
			opt.levelMaps[n] = l
		}
	}
	opt.levelMaps[id] = &level{id, name, flag, colours}
}

func (opt *Option) level(id int32) *level {
	opt.lmux.RLock()
	defer opt.lmux.RUnlock()
	if opt.levelMaps == nil {
		return defaultLevelMaps[id]
	}
	return opt.levelMaps[id]
}
