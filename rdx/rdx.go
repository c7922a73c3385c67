package rdx

import (
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	if opt, err := redis.ParseURL(addr); err == nil {
		Conn = redis.NewClient(opt)
		return
	}

	Conn = redis.NewClient(&redis.Options{Addr: addr})
	log.Println("Redis client initialized for", addr)
}
