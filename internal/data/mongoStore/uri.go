package mongoStore

import (
	"fmt"
	"net/url"
	"os"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

// RequiredVariables are read by CreateMongoURI, in reporting order.
var RequiredVariables = []string{
	config.EnvMongoUser,
	config.EnvMongoPassword,
	config.EnvMongoHost,
	config.EnvMongoCluster,
}

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// CreateMongoURI builds mongodb+srv://<user>:<password>@<host>/?appName=<cluster>.
// A variable that is unset counts as missing; every missing name is reported at once.
func CreateMongoURI(lookup LookupFunc) (string, error) {
	log := logger_i.NewLogger("MongoURI")

	values := make(map[string]string, len(RequiredVariables))
	var missing []string
	for _, name := range RequiredVariables {
		v, ok := lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}

	if len(missing) > 0 {
		err := pipelineError.MissingVariables(missing)
		log.Error("Missing required environment variables", "missing", missing,
			"hint", "provide MONGO_USER, MONGO_PASSWORD, MONGO_HOST and CLUSTER in the environment or a .env file")
		return "", err
	}

	uri := fmt.Sprintf("mongodb+srv://%s:%s@%s/?appName=%s",
		url.QueryEscape(values[config.EnvMongoUser]),
		url.QueryEscape(values[config.EnvMongoPassword]),
		values[config.EnvMongoHost],
		values[config.EnvMongoCluster],
	)
	log.Info("MongoDB URI successfully created")
	return uri, nil
}

func CreateMongoURIFromEnv() (string, error) {
	return CreateMongoURI(os.LookupEnv)
}
