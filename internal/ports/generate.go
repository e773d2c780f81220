// Package ports defines the interfaces between the prediction engine and its
// collaborators. Adapters implement them; core use cases depend only on them.
package ports
