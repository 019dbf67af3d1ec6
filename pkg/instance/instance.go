package instance

import "os"

// GetID identifies this worker replica in logs. Deployments set
// GLOOVA_WORKER_ID per replica; a single-instance run gets the default.
func GetID() string {
	if id := os.Getenv("GLOOVA_WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
