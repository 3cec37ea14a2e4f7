package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/config"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
	"github.com/Codeveil-Studio/QResolve-app/pkg/mailer"
)

// app-level container to share constructed components across packages.
// The router wires modules from these singletons; nil optional clients
// (GCS, Elasticsearch) switch the matching feature off.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	bus        *events.Bus
	mailQueue  mailer.Queue
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetGCS(s *storage.Client)      { gcsClient = s }
func GetGCS() *storage.Client       { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }
func SetBus(b *events.Bus)          { bus = b }
func GetBus() *events.Bus           { return bus }
func SetMailQueue(q mailer.Queue)   { mailQueue = q }

// GetMailQueue never returns nil; without a broker mail is dropped.
func GetMailQueue() mailer.Queue {
	if mailQueue == nil {
		return mailer.NopQueue{}
	}
	return mailQueue
}
