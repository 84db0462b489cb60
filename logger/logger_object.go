package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger 只输出到控制台或指定的 io.Writer，持久化文件由调用方自理
type Logger struct {
	option *Option
	lc     sync.Mutex
}

func New(opt ...*Option) *Logger {
	option := defaultOption.Merge(opt...)
	return &Logger{option: option}
}

func (l *Logger) Level() (int32, string) {
	return l.option.Level, l.option.LevelName
}

func (l *Logger) SetLevel(level interface{}) {
	switch lv := level.(type) {
	case string:
		l.option.LevelName = lv
		l.option.Level = string2Level(lv)
	default:
		lvl := l.option.level(castToLevel(level))
		if lvl != nil {
			l.option.Level = lvl.id
			l.option.LevelName = lvl.name
		}
	}
}

func (l *Logger) SetConsoleOut(consoleout io.Writer) {
	l.option.Console = consoleout
}

func (l *Logger) SetConsole(isConsole bool) {
	if isConsole {
		l.SetConsoleOut(os.Stdout)
	} else {
		l.SetConsoleOut(nil)
	}
}

func (l *Logger) SetColor(isColor bool) {
	l.option.ConsoleColor = isColor
}

func (l *Logger) SetFormat(fmt string, eol string) {
	l.option.SetFormat(fmt, eol)
}

func (l *Logger) SetLevelAttribute(id int32, name string, flag string, colours []color.Attribute) {
	l.option.SetLevelAttribute(id, name, flag, colours)
}

func (l *Logger) SetDepth(depth int) {
	l.option.depth = depth
}

func (l *Logger) AddFormat(name string, f func(buf *[]byte, fa *FmtArgs)) {
	l.option.formater.AddFormat(name, f)
}

func (l *Logger) Format(t time.Time, level string, module string, file string, line int, pc uintptr, fmtf string, args ...interface{}) string {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	fa := &FmtArgs{
		year,
		int(month),
		day,
		hour,
		min,
		sec,
		t.Nanosecond(),
		level,
		module,
		file,
		line,
		pc,
		fmtf,
		args,
	}
	return l.option.formater.Format(fa)
}

func (l *Logger) Fatal(a ...interface{}) {
	l.PrintOut(FATAL, "", a...)
}

func (l *Logger) Fatalf(format string, a ...interface{}) {
	l.PrintOut(FATAL, format, a...)
}

func (l *Logger) Error(a ...interface{}) {
	l.PrintOut(ERROR, "", a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.PrintOut(ERROR, format, a...)
}

func (l *Logger) Warn(a ...interface{}) {
	l.PrintOut(WARN, "", a...)
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	l.PrintOut(WARN, format, a...)
}

func (l *Logger) Info(a ...interface{}) {
	l.PrintOut(INFO, "", a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.PrintOut(INFO, format, a...)
}

func (l *Logger) Debug(a ...interface{}) {
	l.PrintOut(DEBUG, "", a...)
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	l.PrintOut(DEBUG, format, a...)
}

func (l *Logger) Trace(a ...interface{}) {
	l.PrintOut(TRACE, "", a...)
}

func (l *Logger) Tracef(format string, a ...interface{}) {
	l.PrintOut(TRACE, format, a...)
}

func (l *Logger) Print(a ...interface{}) {
	l.PrintOut(INFO, "", a...)
}

func (l *Logger) Printf(format string, a ...interface{}) {
	l.PrintOut(INFO, format, a...)
}

func (lg *Logger) PrintOut(level interface{}, format string, v ...interface{}) bool {
	var calldepth = 2
	if lg.option.depth != 0 {
		calldepth = lg.option.depth
	}
	return lg.Output(calldepth+1, castToLevel(level), format, v...)
}

func (l *Logger) Output(calldepth int, level int32, format string, v ...interface{}) bool {
	pc, file, line, _ := runtime.Caller(calldepth)
	lv := l.option.level(level)
	if lv == nil {
		lv = l.option.level(INFO)
	}
	return l.writeLog(level, lv.flag, lv.color, file, line, pc, format, v...)
}

func (lg *Logger) writeLog(level int32, levelName string, colours []color.Attribute, filepath string, line int, pc uintptr, fmtf string, args ...interface{}) (output bool) {
	defer func() {
		if x := recover(); x != nil {
			fmt.Println("log output error:", x)
		}
	}()
	console := lg.option.Console
	if console == nil || level < lg.option.Level {
		return
	}
	_, module, shortfile := splitFile(filepath)
	bs := []byte(lg.Format(time.Now(), levelName, module, shortfile, line, pc, fmtf, args...))
	lg.lc.Lock()
	defer lg.lc.Unlock()
	if lg.option.ConsoleColor && colours != nil {
		color.Set(colours...)
	}
	console.Write(bs)
	if lg.option.ConsoleColor && colours != nil {
		color.Unset()
	}
	output = true
	return
}
