package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/wecisecode/collections/errs"
)

// Config describes where snapshots live. Endpoints select the etcd store,
// otherwise Dir selects the file store.
type Config struct {
	Dir     string        // file store root directory
	Codec   string        // json, yaml, msgpack or cbor, resolved by ByName
	Backups int           // timestamped backups kept by the file store
	Poll    time.Duration // file watch polling interval

	Endpoints   []string // etcd endpoints
	Username    string
	Password    string
	Prefix      string // etcd key prefix
	DialTimeout time.Duration
}

// LoadConfig reads a configuration file, the format follows the file
// extension, .ini or .yaml/.yml. Keys missing from the file keep their
// defaults, json codec, one second poll, five seconds dial timeout.
func LoadConfig(filename string) (*Config, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, errs.SnapshotError.Wrap(err)
	}
	cfg := &Config{Codec: "json", Poll: time.Second, DialTimeout: 5 * time.Second}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ini":
		err = cfg.fromIni(bs)
	case ".yaml", ".yml":
		err = cfg.fromYaml(bs)
	default:
		return nil, errs.SnapshotError.New("unsupported config format %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, errs.SnapshotError.Wrap(err)
	}
	return cfg, nil
}

func (c *Config) fromIni(bs []byte) error {
	f, err := ini.Load(bs)
	if err != nil {
		return err
	}
	kv := map[string]interface{}{}
	for _, section := range f.Sections() {
		prefix := strings.ToLower(section.Name()) + "."
		if section.Name() == ini.DefaultSection {
			// 无小节的键按 store 小节处理
			prefix = "store."
		}
		for _, key := range section.Keys() {
			kv[prefix+strings.ToLower(key.Name())] = key.String()
		}
	}
	c.apply(kv)
	return nil
}

func (c *Config) fromYaml(bs []byte) error {
	m := map[string]interface{}{}
	if err := yaml.Unmarshal(bs, &m); err != nil {
		return err
	}
	kv := map[string]interface{}{}
	for section, sv := range m {
		for key, v := range cast.ToStringMap(sv) {
			kv[strings.ToLower(section)+"."+strings.ToLower(key)] = v
		}
	}
	c.apply(kv)
	return nil
}

func (c *Config) apply(kv map[string]interface{}) {
	for key, v := range kv {
		switch key {
		case "store.dir":
			c.Dir = cast.ToString(v)
		case "store.codec":
			c.Codec = cast.ToString(v)
		case "store.backups":
			c.Backups = cast.ToInt(v)
		case "store.poll":
			c.Poll = cast.ToDuration(v)
		case "etcd.endpoints":
			c.Endpoints = toEndpoints(v)
		case "etcd.username":
			c.Username = cast.ToString(v)
		case "etcd.password":
			c.Password = cast.ToString(v)
		case "etcd.prefix":
			c.Prefix = cast.ToString(v)
		case "etcd.dialtimeout":
			c.DialTimeout = cast.ToDuration(v)
		}
	}
}

func toEndpoints(v interface{}) []string {
	if s, ok := v.(string); ok {
		eps := []string{}
		for _, e := range strings.Split(s, ",") {
			if e = strings.TrimSpace(e); e != "" {
				eps = append(eps, e)
			}
		}
		return eps
	}
	return cast.ToStringSlice(v)
}

// OpenStore builds the store the configuration describes.
func OpenStore(cfg *Config) (Store, error) {
	if cfg == nil {
		return nil, errs.InvalidParamError.New("nil config")
	}
	if len(cfg.Endpoints) > 0 {
		opts := []EtcdOption{}
		if cfg.Prefix != "" {
			opts = append(opts, WithPrefix(cfg.Prefix))
		}
		if cfg.DialTimeout > 0 {
			opts = append(opts, WithDialTimeout(cfg.DialTimeout))
		}
		if cfg.Username != "" {
			opts = append(opts, WithAuth(cfg.Username, cfg.Password))
		}
		return NewEtcdStore(cfg.Endpoints, opts...)
	}
	if cfg.Dir == "" {
		return nil, errs.InvalidParamError.New("config names neither a store directory nor etcd endpoints")
	}
	opts := []FileOption{}
	if cfg.Backups > 0 {
		opts = append(opts, WithBackups(cfg.Backups))
	}
	if cfg.Poll > 0 {
		opts = append(opts, WithPollInterval(cfg.Poll))
	}
	return NewFileStore(cfg.Dir, opts...), nil
}
