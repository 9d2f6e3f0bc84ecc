package connector

import (
	"fmt"
	"strconv"

	v2 "github.com/conductorone/baton-sdk/pb/c1/connector/v2"
	"github.com/conductorone/baton-sdk/pkg/annotations"
	rs "github.com/conductorone/baton-sdk/pkg/types/resource"
)

func annotationsForUserResourceType() annotations.Annotations {
	annos := annotations.Annotations{}
	annos.Update(&v2.SkipEntitlementsAndGrants{})
	return annos
}

func formatKey(key int64) string {
	return strconv.FormatInt(key, 10)
}

// parentGroupKey returns the group key a child resource was listed under.
func parentGroupKey(resource *v2.Resource) (string, error) {
	if resource.ParentResourceId == nil || resource.ParentResourceId.ResourceType != groupResourceType.Id {
		return "", fmt.Errorf("gotomeeting-connector: resource %s has no parent group", resource.Id.Resource)
	}

	return resource.ParentResourceId.Resource, nil
}

// primaryEmail returns the primary email of a user resource, or the first one listed.
func primaryEmail(resource *v2.Resource) (string, error) {
	trait, err := rs.GetUserTrait(resource)
	if err != nil {
		return "", err
	}

	var email string
	for _, e := range trait.Emails {
		if e.IsPrimary {
			return e.Address, nil
		}
		if email == "" {
			email = e.Address
		}
	}

	if email == "" {
		return "", fmt.Errorf("gotomeeting-connector: user %s has no email", resource.Id.Resource)
	}

	return email, nil
}
