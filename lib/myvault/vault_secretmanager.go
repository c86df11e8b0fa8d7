package myvault

import (
	"context"
	"encoding/json"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	grpcCodes "google.golang.org/grpc/codes"
	grpcStatus "google.golang.org/grpc/status"
)

type secretAccessor func(c context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)

// secretManagerVault stores each credential set as a JSON secret named after its uid
type secretManagerVault struct {
	projectID string
	access    secretAccessor
}

func newSecretManagerVault(c context.Context, projectID string) (VaultReader, func(), error) {
	client, err := secretmanager.NewClient(c)
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating secretmanager-client: %s", err)
	}

	access := func(c context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
		return client.AccessSecretVersion(c, req)
	}

	return &secretManagerVault{
			projectID: projectID,
			access:    access,
		}, func() {
			client.Close()
		}, nil
}

func (v *secretManagerVault) Get(c context.Context, uid string) (Credentials, bool, error) {
	name := secretName(v.projectID, uid)

	resp, err := v.access(c, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		if grpcStatus.Code(err) == grpcCodes.NotFound {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, fmt.Errorf("error accessing secret %s: %s", name, err)
	}

	credentials := Credentials{}
	err = json.Unmarshal(resp.GetPayload().GetData(), &credentials)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("error parsing secret %s: %s", name, err)
	}

	return credentials, true, nil
}

func secretName(projectID string, uid string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, uid)
}
