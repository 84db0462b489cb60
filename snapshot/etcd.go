package snapshot

import (
	"context"
	"strings"
	"time"

	"go.etcd.io/etcd/client/v3"

	"github.com/wecisecode/collections/errs"
	"github.com/wecisecode/collections/logger"
)

const etcdSeparator = "/"

type EtcdOption func(*etcdOptions)

type etcdOptions struct {
	username    string
	password    string
	prefix      string
	dialTimeout time.Duration
}

// WithAuth enables password authentication.
func WithAuth(username, password string) EtcdOption {
	return func(o *etcdOptions) {
		o.username = username
		o.password = password
	}
}

// WithPrefix stores all snapshots below the given key prefix.
func WithPrefix(prefix string) EtcdOption {
	return func(o *etcdOptions) {
		o.prefix = prefix
	}
}

// WithDialTimeout sets the connect timeout. Default is five seconds.
func WithDialTimeout(d time.Duration) EtcdOption {
	return func(o *etcdOptions) {
		o.dialTimeout = d
	}
}

// EtcdStore keeps snapshots as values in an etcd cluster, one key per
// snapshot name below a common prefix.
type EtcdStore struct {
	client *clientv3.Client
	prefix string
	ctx    context.Context
	cancel context.CancelFunc
}

func NewEtcdStore(endpoints []string, opts ...EtcdOption) (*EtcdStore, error) {
	if len(endpoints) == 0 {
		return nil, errs.InvalidParamError.New("no etcd endpoints")
	}
	opt := etcdOptions{dialTimeout: 5 * time.Second}
	for _, o := range opts {
		o(&opt)
	}
	config := clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: opt.dialTimeout,
	}
	if opt.username != "" && opt.password != "" {
		config.Username = opt.username
		config.Password = opt.password
	}
	cli, err := clientv3.New(config)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EtcdStore{client: cli, prefix: opt.prefix, ctx: ctx, cancel: cancel}, nil
}

func (s *EtcdStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return strings.TrimSuffix(s.prefix, etcdSeparator) + etcdSeparator + name
}

func (s *EtcdStore) Save(name string, data []byte) error {
	ctx, cancel := context.WithTimeout(s.ctx, time.Second*3)
	defer cancel()
	_, err := s.client.Put(ctx, s.key(name), string(data))
	return err
}

func (s *EtcdStore) Load(name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(s.ctx, time.Second*3)
	defer cancel()
	resp, err := s.client.Get(ctx, s.key(name))
	if err != nil {
		return nil, err
	}
	for _, kv := range resp.Kvs {
		return kv.Value, nil
	}
	return nil, &notFoundError{name: name}
}

func (s *EtcdStore) Watch(name string, fn func()) (cancel func(), err error) {
	watchCtx, watchCancel := context.WithCancel(s.ctx)
	key := s.key(name)
	go func() {
		// https://github.com/etcd-io/etcd/issues/8980
		// https://github.com/sensu/sensu-go/issues/3012
		leaderCtx := clientv3.WithRequireLeader(watchCtx)
		watchChan := s.client.Watch(leaderCtx, key)
		for {
			select {
			case wresp, ok := <-watchChan:
				if ok {
					for range wresp.Events {
						fn()
					}
				} else {
					time.Sleep(time.Second)
					if watchCtx.Err() != nil {
						return
					}
					logger.Warnf("etcd '%s' watching channel was closed", key)
					clusterOk := true
					for _, ed := range s.client.Endpoints() {
						cx, cancel := context.WithTimeout(context.Background(), time.Second*3)
						if _, err := s.client.Status(cx, ed); err != nil {
							logger.Warnf("etcd endpoint '%s' check error: %v", ed, err)
							clusterOk = false
						}
						cancel()
					}
					if clusterOk {
						watchChan = s.client.Watch(leaderCtx, key)
					}
				}
			case <-watchCtx.Done():
				return
			}
		}
	}()
	return watchCancel, nil
}

// Close cancels all watches and closes the client connection.
func (s *EtcdStore) Close() error {
	s.cancel()
	return s.client.Close()
}
