package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"planner-backend-go/internal/config"
	"planner-backend-go/internal/models"
)

const (
	usersCollection       = "users"
	plannersCollection    = "planners"
	sectionsCollection    = "sections"
	sharesCollection      = "planner_shares"
	activityCollection    = "activity_logs"
	chatCollection        = "chat_history"
	handwritingCollection = "handwriting"
	exportsCollection     = "exports"
)

var (
	// fbApp is the global Firebase app, kept for storage access.
	fbApp *firebase.App
	// fsClient is the global Firestore client instance.
	fsClient *firestore.Client
	// fbAuthClient is the global Firebase Auth client instance.
	fbAuthClient *auth.Client
)

// InitFirestore initializes the Firebase Admin SDK and sets up the Firestore and Auth clients.
// Credentials come from a file path, a base64 service account JSON, or Application Default Credentials.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	firebaseAppConfig := &firebase.Config{
		ProjectID:     appConfig.FirebaseProjectID,
		StorageBucket: appConfig.FirebaseStorageBucket,
	}

	app, err := firebase.NewApp(ctx, firebaseAppConfig, opts...)
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authCl, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}

	fbApp = app
	fsClient = client
	fbAuthClient = authCl
	logger.Info("Firestore and Firebase Auth clients initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return nil
}

// GetFirebaseApp returns the global Firebase app.
func GetFirebaseApp() *firebase.App {
	return fbApp
}

// GetFirestoreClient returns the global Firestore client.
// Callers should check for nil, implying InitFirestore hasn't been called or failed.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// CloseFirestore releases the Firestore client.
func CloseFirestore() error {
	if fsClient == nil {
		return nil
	}
	return fsClient.Close()
}

// getDoc loads a single document into T and stamps its id through setID.
func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef, kind string, setID func(*T, string)) (*T, error) {
	if ref.ID == "" {
		return nil, fmt.Errorf("%s id cannot be empty: %w", kind, ErrNotFound)
	}
	docSnap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s with ID '%s' not found: %w", kind, ref.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s with ID '%s': %w", kind, ref.ID, err)
	}
	var out T
	if err := docSnap.DataTo(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s data for ID '%s': %w", kind, ref.ID, err)
	}
	setID(&out, docSnap.Ref.ID)
	return &out, nil
}

// queryDocs runs a query and decodes every document into T.
func queryDocs[T any](ctx context.Context, query firestore.Query, kind string, setID func(*T, string)) ([]*T, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	out := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s documents: %w", kind, err)
		}
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to decode %s data for ID '%s': %w", kind, doc.Ref.ID, err)
		}
		setID(&item, doc.Ref.ID)
		out = append(out, &item)
	}
	return out, nil
}

// paginate applies limit and a startAfter cursor given as a document id.
// An unknown cursor id yields an empty page rather than restarting from the top.
func paginate(ctx context.Context, col *firestore.CollectionRef, query firestore.Query, page models.Page) (firestore.Query, bool, error) {
	page = page.Normalize()
	query = query.Limit(page.Limit)
	if page.StartAfter == "" {
		return query, true, nil
	}
	snap, err := col.Doc(page.StartAfter).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return query, false, nil
		}
		return query, false, fmt.Errorf("failed to fetch cursor document '%s': %w", page.StartAfter, err)
	}
	return query.StartAfter(snap), true, nil
}

// deleteAllInTx deletes every document matched by the queries inside tx.
// Reads must precede writes in a Firestore transaction, so all queries are read first.
func deleteAllInTx(tx *firestore.Transaction, queries ...firestore.Query) (int, error) {
	var refs []*firestore.DocumentRef
	for _, q := range queries {
		docs, err := tx.Documents(q).GetAll()
		if err != nil {
			return 0, err
		}
		for _, d := range docs {
			refs = append(refs, d.Ref)
		}
	}
	for _, ref := range refs {
		if err := tx.Delete(ref); err != nil {
			return 0, err
		}
	}
	return len(refs), nil
}

func toUpdates(fields map[string]interface{}) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return updates
}
