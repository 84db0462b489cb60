package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wecisecode/collections/errs"
)

type FileOption func(*FileStore)

// WithBackups keeps n timestamped copies of replaced snapshots next to the
// primary file. Zero disables timestamped backups, the .last copy of the
// previous content is kept either way.
func WithBackups(n int) FileOption {
	return func(s *FileStore) {
		s.backups = n
	}
}

// WithPollInterval sets the stat polling interval of Watch. Default is one
// second.
func WithPollInterval(d time.Duration) FileOption {
	return func(s *FileStore) {
		s.poll = d
	}
}

// FileStore keeps snapshots as files under a root directory. Save replaces
// the file atomically, the previous content stays readable as a .last copy
// and Load falls back to it when the primary file is missing. Watch polls
// the file state instead of relying on inotify, rename cycles make inotify
// watches silently die, polling keeps working.
type FileStore struct {
	dir     string
	backups int
	poll    time.Duration

	mu      sync.Mutex
	watches map[int]*fileWatch
	nextID  int
	stop    chan struct{}
	closed  bool
}

type fileWatch struct {
	path string
	info fs.FileInfo
	fn   func()
}

func NewFileStore(dir string, opts ...FileOption) *FileStore {
	s := &FileStore{
		dir:     dir,
		poll:    1 * time.Second,
		watches: map[int]*fileWatch{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// last_filename 在扩展名前插入 .last，保持原扩展名可识别
func last_filename(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i > 0 {
		return filename[:i] + ".last" + filename[i:]
	}
	return filename + ".last"
}

func backup_filename(filename string) string {
	return fmt.Sprint(filename, ".", time.Now().UnixNano(), ".bak")
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Save(name string, data []byte) error {
	filename := s.path(name)
	os.MkdirAll(filepath.Dir(filename), 0775)
	tempfn := filename + ".tmp"
	f, err := os.OpenFile(tempfn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0664)
	if err != nil {
		return fmt.Errorf("open file %s error: %v", tempfn, err)
	}
	defer func() {
		e := f.Close()
		if e == nil && err == nil {
			if s.backups > 0 {
				s.backup(filename)
			}
			lastfn := last_filename(filename)
			os.Remove(lastfn)
			os.Rename(filename, lastfn)
			os.Rename(tempfn, filename)
		} else {
			os.Remove(tempfn)
		}
	}()
	_, err = f.Write(data)
	if err != nil {
		return fmt.Errorf("file write %s error: %v", filename, err)
	}
	return nil
}

// backup 把即将被替换的当前内容复制为带时间戳的副本，并按保留数清理旧副本
func (s *FileStore) backup(filename string) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return
	}
	os.WriteFile(backup_filename(filename), bs, 0664)
	dir, file := filepath.Split(filename)
	clearFiles(dir, "^"+regexp.QuoteMeta(file)+`\.\d+\.bak$`, s.backups)
}

func clearFiles(dir, namematch string, keeplast int) {
	rx, err := regexp.Compile(namematch)
	if err != nil {
		return
	}
	des, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	fis := []fs.FileInfo{}
	for _, de := range des {
		fi, e := de.Info()
		if e != nil {
			continue
		}
		if !fi.IsDir() && rx.MatchString(fi.Name()) {
			fis = append(fis, fi)
		}
	}
	sort.Slice(fis, func(i, j int) bool {
		if fis[i].ModTime().Equal(fis[j].ModTime()) {
			if fis[i].Size() == fis[j].Size() {
				return fis[i].Name() < fis[j].Name()
			}
			return fis[i].Size() > fis[j].Size()
		}
		return fis[i].ModTime().Before(fis[j].ModTime())
	})
	for len(fis) > keeplast {
		os.Remove(filepath.Join(dir, fis[0].Name()))
		fis = fis[1:]
	}
}

func (s *FileStore) Load(name string) ([]byte, error) {
	filename := s.path(name)
	bs, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			bs, err = os.ReadFile(last_filename(filename))
			if os.IsNotExist(err) {
				return nil, &notFoundError{name: name}
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("file read %s error: %v", filename, err)
	}
	return bs, nil
}

func (s *FileStore) Watch(name string, fn func()) (cancel func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errs.SnapshotError.New("store closed")
	}
	path := s.path(name)
	info, _ := os.Stat(path)
	s.nextID++
	id := s.nextID
	s.watches[id] = &fileWatch{path: path, info: info, fn: fn}
	if s.stop == nil {
		s.stop = make(chan struct{})
		go s.pollLoop(s.stop)
	}
	return func() {
		s.mu.Lock()
		delete(s.watches, id)
		s.mu.Unlock()
	}, nil
}

func (s *FileStore) pollLoop(stop chan struct{}) {
	t := time.NewTimer(s.poll)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			for _, w := range s.snapshotWatches() {
				s.checkFileChange(w)
			}
			t.Reset(s.poll)
		}
	}
}

func (s *FileStore) snapshotWatches() []*fileWatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := make([]*fileWatch, 0, len(s.watches))
	for _, w := range s.watches {
		ws = append(ws, w)
	}
	return ws
}

func (s *FileStore) checkFileChange(w *fileWatch) {
	nfi, _ := os.Stat(w.path)
	ofi := w.info
	if nfi == nil && ofi != nil || nfi != nil && (ofi == nil || !nfi.ModTime().Equal(ofi.ModTime()) || nfi.Size() != ofi.Size()) {
		w.fn()
	}
	// 更新缓存状态，继续轮询
	w.info = nfi
}

// Close stops the polling goroutine. Files already written stay in place,
// further Watch calls fail.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.watches = map[int]*fileWatch{}
	return nil
}
